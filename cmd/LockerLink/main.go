// Package main is the entry point of LockerLink service.
// It runs the OAuth web boundary, the Discord gateway and the scheduler in one kratos application.
package main

import (
	"flag"
	"os"

	"LockerLink/internal/conf"
	"LockerLink/internal/server"
	zapLogger "LockerLink/pkg/log"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name = "LockerLink"
	// Version is the version of the compiled software.
	Version string
	// flagconf is the config flag.
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "../../configs/config.yaml", "config path, eg: -conf config.yaml")
}

func newApp(logger log.Logger, hs *http.Server, ds *server.DiscordServer, cs *server.CronServer) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(
			hs,
			ds,
			cs,
		),
	)
}

func main() {
	flag.Parse()

	// Viper: 环境变量 > 配置文件 > 默认值
	bc, err := conf.NewBootstrap(flagconf)
	if err != nil {
		// Zap 尚未初始化，使用 kratos 默认 logger
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLog, err := zapLogger.NewZapLogger(bc.Log)
	if err != nil {
		log.Fatalf("failed to initialize zap logger: %v", err)
	}
	defer zapLog.Sync()

	logger := zapLogger.NewKratosAdapter(zapLog)
	logger = log.With(logger,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)

	zapLogger.NewLogHelper(logger).Startup("LockerLink service starting",
		"http.addr", bc.Server.HTTP.Addr,
		"discord.enabled", bc.Discord.Token != "",
		"debug.tokens", bc.Debug.Tokens,
		"log.level", bc.Log.Level,
		"log.format", bc.Log.Format,
	)

	app, cleanup, err := wireApp(bc.Server, bc.OAuth, bc.Discord, bc.Catalog, bc.Locker, bc.Scheduler, bc.Debug, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// start and wait for stop signal
	if err := app.Run(); err != nil {
		panic(err)
	}
}
