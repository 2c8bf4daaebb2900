// Package config loads server settings from the environment and CLI settings
// from a TOML file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendSQLite   = "sqlite"
)

// Config holds the API server settings.
type Config struct {
	// HTTP server
	Port      string
	APITokens []string

	// Backend selection
	DataBackend  string
	SQLiteDBPath string

	// DynamoDB
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	DynamoDBEndpoint   string
	BudgetsTable       string
	SequencesTable     string
	CustomersTable     string
	PaymentsTable      string

	// Presentation
	CompanyName string
	Timezone    string

	// Notifications
	ResendAPIKey string
	EmailFrom    string

	// AMQP (optional)
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Address lookup
	ViaCEPBaseURL string

	// Google Sheets (optional)
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string

	// Payments
	MercadoPagoAccessToken string
	PaymentGatewayMock     bool
	TestPayerEmail         string
	TestPayerUserID        string
}

func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		APITokens: splitList(os.Getenv("API_TOKENS")),

		DataBackend:  strings.ToLower(getEnv("DATA_BACKEND", BackendSQLite)),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/marcenaria.db"),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		DynamoDBEndpoint:   os.Getenv("DYNAMODB_ENDPOINT"),
		BudgetsTable:       getEnv("BUDGETS_TABLE", "budgets"),
		SequencesTable:     getEnv("BUDGET_SEQUENCES_TABLE", "budget_sequences"),
		CustomersTable:     getEnv("CUSTOMERS_TABLE", "customers"),
		PaymentsTable:      getEnv("PAYMENTS_TABLE", "billing_payments"),

		CompanyName: getEnv("COMPANY_NAME", "Marcenaria MDF"),
		Timezone:    getEnv("TIMEZONE", "America/Sao_Paulo"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    getEnv("EMAIL_FROM", "onboarding@resend.dev"),

		AMQPURL:        os.Getenv("AMQP_URL"),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "marcenaria"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "budgets"),

		ViaCEPBaseURL: getEnv("VIACEP_BASE_URL", "https://viacep.com.br/ws"),

		GoogleSpreadsheetID:      os.Getenv("GOOGLE_SPREADSHEET_ID"),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Orçamentos"),
		GoogleServiceAccountFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),

		MercadoPagoAccessToken: strings.TrimSpace(os.Getenv("MERCADOPAGO_ACCESS_TOKEN")),
		PaymentGatewayMock:     getEnvBool("PAYMENT_GATEWAY_MOCK") || getEnvBool("MERCADOPAGO_MOCK"),
		TestPayerEmail:         strings.TrimSpace(os.Getenv("MERCADOPAGO_TEST_PAYER_EMAIL")),
		TestPayerUserID:        strings.TrimSpace(os.Getenv("MERCADOPAGO_TEST_PAYER_USER_ID")),
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLITE_DB_PATH cannot be empty when using sqlite backend")
		}
	case BackendDynamoDB:
		for name, v := range map[string]string{
			"BUDGETS_TABLE":          c.BudgetsTable,
			"BUDGET_SEQUENCES_TABLE": c.SequencesTable,
			"CUSTOMERS_TABLE":        c.CustomersTable,
			"PAYMENTS_TABLE":         c.PaymentsTable,
		} {
			if v == "" {
				problems = append(problems, name+" cannot be empty when using dynamodb backend")
			}
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]", c.DataBackend, BackendDynamoDB, BackendSQLite))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleServiceAccountFile == "" {
		problems = append(problems, "GOOGLE_SERVICE_ACCOUNT_FILE is required when GOOGLE_SPREADSHEET_ID is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on", "mock":
		return true
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
