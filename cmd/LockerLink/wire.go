//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"LockerLink/internal/biz"
	"LockerLink/internal/conf"
	"LockerLink/internal/data"
	"LockerLink/internal/server"
	"LockerLink/internal/service"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.OAuth, *conf.Discord, *conf.Catalog, *conf.Locker, *conf.Scheduler, *conf.Debug, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		data.ProviderSet,
		biz.ProviderSet,
		service.ProviderSet,
		server.ProviderSet,
		newApp,
	))
}
