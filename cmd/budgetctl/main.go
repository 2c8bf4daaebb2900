package main

import (
	"io"
	"log"
	"os"
	"time"

	"marcenaria_mdf/internal/adapter/gateway/httpgateway"
	"marcenaria_mdf/internal/cli"
	"marcenaria_mdf/internal/config"
	"marcenaria_mdf/internal/usecase"

	"github.com/mattn/go-isatty"
)

func main() {
	if os.Getenv("BUDGETCTL_DEBUG") == "" {
		log.SetOutput(io.Discard)
	}

	path := config.CLIConfigPath()
	cfg, err := config.LoadCLI(path)
	if err != nil {
		cli.ReportError(os.Stderr, err)
		os.Exit(1)
	}

	app := &cli.App{
		ConfigPath: path,
		Config:     cfg,
		Plain:      !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}

	// a rejected token is dropped from disk so the next run asks for login
	session := httpgateway.NewSession(cfg.Session.Token, func() {
		app.Config.Session.Token = ""
		if err := config.SaveCLI(path, app.Config); err != nil {
			log.Printf("[budgetctl] clearing token failed err=%v", err)
		}
	})
	timeout := time.Duration(cfg.Gateway.TimeoutSeconds) * time.Second
	client := httpgateway.NewClient(cfg.Gateway.BaseURL, session, timeout)

	customers := client.Customers()
	app.Budgets = usecase.NewBudgetUseCase(client.Budgets(), customers, nil)
	app.Customers = usecase.NewCustomerUseCase(customers, nil)
	app.Links = client.Budgets()
	app.Warnings = client

	if err := cli.NewRootCmd(app).Execute(); err != nil {
		cli.ReportError(os.Stderr, err)
		os.Exit(1)
	}
}
