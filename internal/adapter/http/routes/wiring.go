package routes

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"marcenaria_mdf/internal/adapter/http/handlers"
	"marcenaria_mdf/internal/adapter/persistence/repository"
	"marcenaria_mdf/internal/config"
	"marcenaria_mdf/internal/infrastructure/address"
	"marcenaria_mdf/internal/infrastructure/database"
	"marcenaria_mdf/internal/infrastructure/export"
	"marcenaria_mdf/internal/infrastructure/messaging"
	"marcenaria_mdf/internal/infrastructure/notification"
	"marcenaria_mdf/internal/infrastructure/payments"
	"marcenaria_mdf/internal/usecase"
	"marcenaria_mdf/internal/usecase/interfaces"
)

// App holds the wired handlers and whatever must be released on shutdown.
type App struct {
	Handlers Handlers
	closers  []io.Closer
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Printf("[app][shutdown] close failed err=%v", err)
		}
	}
}

type repositories struct {
	budgets   interfaces.IBudgetRepository
	customers interfaces.ICustomerRepository
	payments  interfaces.IBillingPaymentRepository
}

// buildApp wires repositories, adapters and use cases from cfg.
// Optional collaborators (email, AMQP, Sheets, Mercado Pago) stay nil when unconfigured.
func buildApp(cfg *config.Config) (*App, error) {
	app := &App{}
	loc := cfg.Location()

	repos, err := openRepositories(cfg, loc, app)
	if err != nil {
		return nil, err
	}

	var email interfaces.IEmailSender
	if sender, err := notification.NewResendEmailSender(notification.ResendOptions{
		APIKey:  cfg.ResendAPIKey,
		From:    cfg.EmailFrom,
		Company: cfg.CompanyName,
		Timeout: 10 * time.Second,
	}); err != nil {
		log.Printf("Email sender not configured: %v", err)
	} else {
		email = sender
	}

	dispatcher := usecase.NewNotificationDispatcher(email, notification.NewWhatsAppLinkGenerator(cfg.CompanyName), loc)
	if cfg.AMQPURL != "" {
		publisher, err := messaging.DialAMQPBudgetPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			log.Printf("AMQP publisher not available: %v", err)
		} else {
			dispatcher.Subscribe(publisher)
			app.closers = append(app.closers, publisher)
		}
	}

	var sheets interfaces.ISheetPublisher
	if cfg.GoogleSpreadsheetID != "" {
		publisher, err := export.NewGoogleSheetsPublisher(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, cfg.GoogleServiceAccountFile)
		if err != nil {
			log.Printf("Google Sheets publisher not configured: %v", err)
		} else {
			sheets = publisher
		}
	}

	var paymentGateway interfaces.IPaymentGateway
	if !cfg.PaymentGatewayMock {
		mpGateway, err := payments.NewMercadoPagoGateway(cfg.MercadoPagoAccessToken)
		if err != nil {
			log.Printf("Mercado Pago gateway not configured: %v", err)
		} else {
			paymentGateway = mpGateway
		}
	}

	customerUseCase := usecase.NewCustomerUseCase(repos.customers, address.NewViaCEPClient(cfg.ViaCEPBaseURL, 5*time.Second))
	budgetUseCase := usecase.NewBudgetUseCase(repos.budgets, repos.customers, dispatcher)
	paymentUseCase := usecase.NewBillingPaymentUseCase(repos.payments, budgetUseCase, paymentGateway, usecase.PaymentOptions{
		Mock:            cfg.PaymentGatewayMock,
		AccessToken:     cfg.MercadoPagoAccessToken,
		TestPayerEmail:  cfg.TestPayerEmail,
		TestPayerUserID: cfg.TestPayerUserID,
	})
	reportUseCase := usecase.NewReportUseCase(budgetUseCase, customerUseCase)
	exportUseCase := usecase.NewExportUseCase(budgetUseCase, customerUseCase, sheets, cfg.CompanyName, loc)

	app.Handlers = Handlers{
		Budgets:   handlers.NewBudgetHandler(budgetUseCase, exportUseCase),
		Customers: handlers.NewCustomerHandler(customerUseCase),
		Payments:  handlers.NewBillingPaymentHandler(paymentUseCase, cfg.PaymentGatewayMock),
		Reports:   handlers.NewReportHandler(reportUseCase, exportUseCase),
	}
	log.Printf("[app][wiring] ready backend=%s timezone=%s", cfg.DataBackend, loc)
	return app, nil
}

func openRepositories(cfg *config.Config, loc *time.Location, app *App) (repositories, error) {
	switch cfg.DataBackend {
	case config.BackendDynamoDB:
		ctx := context.Background()
		ddb, err := database.OpenDynamoDB(ctx, database.DynamoDBSettings{
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.DynamoDBEndpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return repositories{}, err
		}
		if cfg.DynamoDBEndpoint != "" {
			tables := database.TableNames{
				Budgets:   cfg.BudgetsTable,
				Sequences: cfg.SequencesTable,
				Customers: cfg.CustomersTable,
				Payments:  cfg.PaymentsTable,
			}
			if err := database.EnsureTables(ctx, ddb, tables.Schemas(), 30*time.Second); err != nil {
				return repositories{}, err
			}
		}
		return repositories{
			budgets:   repository.NewBudgetDynamoRepository(ddb, cfg.BudgetsTable, cfg.SequencesTable, loc),
			customers: repository.NewCustomerDynamoRepository(ddb, cfg.CustomersTable),
			payments:  repository.NewBillingPaymentDynamoRepository(ddb, cfg.PaymentsTable),
		}, nil
	case config.BackendSQLite:
		db, err := database.OpenSQLite(cfg.SQLiteDBPath)
		if err != nil {
			return repositories{}, err
		}
		app.closers = append(app.closers, db)
		return repositories{
			budgets:   repository.NewBudgetSQLiteRepository(db, loc),
			customers: repository.NewCustomerSQLiteRepository(db),
			payments:  repository.NewBillingPaymentSQLiteRepository(db),
		}, nil
	default:
		return repositories{}, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}
