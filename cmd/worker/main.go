package main

import (
	"os"

	"github.com/vladmycode/imager/internal/app/worker"
	"github.com/vladmycode/imager/internal/config"

	"github.com/wb-go/wbf/zlog"
)

func main() {
	zlog.Init()

	cfg, err := config.MustLoad()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load config")
	}

	workerApp, err := worker.NewWorker(cfg, &zlog.Logger)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to create worker")
	}

	if err := workerApp.Run(); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("worker failed")
	}

	zlog.Logger.Info().Msg("worker exited successfully")
	os.Exit(0)
}
