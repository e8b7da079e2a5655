package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-kratos/kratos/v2/log"
)

// Invocation 一次斜杠命令调用
type Invocation struct {
	OwnerID string
	// Surface 本次交互的 token，用于之后编辑同一条消息
	Surface string
}

// CommandHandler 单个斜杠命令
type CommandHandler interface {
	Name() string
	Description() string
	// Deferred 为 true 时先回复"思考中"，执行完成后编辑该回复
	Deferred() bool
	Execute(ctx context.Context, inv *Invocation) (*Reply, error)
}

// CommandDefinition 注册到聊天平台的命令描述
type CommandDefinition struct {
	Name        string
	Description string
}

// Registry manages slash command handlers by name.
type Registry struct {
	handlers map[string]CommandHandler
	logger   *log.Helper
}

// NewRegistry creates a new command registry.
func NewRegistry(logger log.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]CommandHandler),
		logger:   log.NewHelper(logger),
	}
}

// Register registers a handler under its name.
func (r *Registry) Register(handler CommandHandler) {
	r.handlers[handler.Name()] = handler
	r.logger.Infof("Registered command handler: /%s", handler.Name())
}

// Get returns the handler for name.
func (r *Registry) Get(name string) (CommandHandler, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("no command handler registered for: %s", name)
	}
	return handler, nil
}

// Definitions lists the registered commands sorted by name.
func (r *Registry) Definitions() []CommandDefinition {
	defs := make([]CommandDefinition, 0, len(r.handlers))
	for _, h := range r.handlers {
		defs = append(defs, CommandDefinition{Name: h.Name(), Description: h.Description()})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}
