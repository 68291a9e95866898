package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"lazy-tourist-be/internal/bootstrap"
	"lazy-tourist-be/internal/config"
	"lazy-tourist-be/internal/server"
	"lazy-tourist-be/internal/tracer"
)

func main() {
	shutdownTracer := tracer.InitTracer("lazy-tourist-api")
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := bootstrap.NewContainer(ctx, cfg)
	if err != nil {
		log.Panicf("Unable to bootstrap planner: %v", err)
	}
	defer container.Close()

	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(ctx); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
