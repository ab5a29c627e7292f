package main

import (
	"os"

	"github.com/vladmycode/imager/internal/app"
	"github.com/vladmycode/imager/internal/config"

	"github.com/wb-go/wbf/zlog"
)

func main() {
	zlog.Init()

	cfg, err := config.MustLoad()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load config")
	}

	application, err := app.NewApp(cfg, &zlog.Logger)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to create app")
	}

	if err := application.Run(); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("server failed")
	}

	zlog.Logger.Info().Msg("server exited successfully")
	os.Exit(0)
}
