package main

import (
	"context"
	"errors"
	"os"

	"github.com/fsdevblog/kopilka/internal/app"
	"github.com/fsdevblog/kopilka/internal/config"
	"github.com/fsdevblog/kopilka/internal/logger"
)

func main() {
	conf := config.MustLoadConfig()
	l := logger.New(os.Stdout)
	if err := logger.SetLevel(l, conf.LogLevel); err != nil {
		l.WithError(err).Warn("keeping default log level")
	}

	if err := app.New(conf, l).Run(); err != nil {
		if errors.Is(err, context.Canceled) {
			l.Info("graceful shutdown")
			os.Exit(0)
		}
		l.WithError(err).Fatal("app stopped")
	}
}
