package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"

	"github.com/orbtao/connectify/backend/internal/app"
	"github.com/orbtao/connectify/backend/pkg/logger"
)

func main() {
	log := logger.New(logger.Opts{})

	application := fx.New(app.Module)

	if err := application.Start(context.Background()); err != nil {
		log.Error("Failed to start application", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case sig := <-application.Wait():
		log.Info("Application requested shutdown", "exit_code", sig.ExitCode)
	}

	if err := application.Stop(context.Background()); err != nil {
		log.Error("Failed to stop application", "error", err)
		os.Exit(1)
	}
}
