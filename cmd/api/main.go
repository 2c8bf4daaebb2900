package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "marcenaria_mdf/docs"
	"marcenaria_mdf/internal/adapter/http/routes"
	"marcenaria_mdf/internal/config"

	_ "github.com/joho/godotenv/autoload"
)

// @title           Marcenaria Budget API
// @version         1.0
// @description     Budgets (orçamentos), customers and payments for a woodworking shop.

// @host localhost:8080

// @BasePath  /v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the API token.

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[api] %v", err)
	}

	server, err := routes.NewServer(cfg)
	if err != nil {
		log.Fatalf("[api] wiring failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Serve(ctx); err != nil {
		log.Fatalf("[api] server stopped: %v", err)
	}
}
