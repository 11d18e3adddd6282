package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/psarz/g2g-converter/internal/app"
)

const shutdownGrace = 5 * time.Second

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			log.Fatalf("server: %v", err)
		}
		return
	case sig := <-quit:
		log.Printf("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := a.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
