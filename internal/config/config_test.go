package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATA_BACKEND", "API_TOKENS", "PAYMENT_GATEWAY_MOCK", "MERCADOPAGO_MOCK", "TIMEZONE", "AMQP_URL", "GOOGLE_SPREADSHEET_ID"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendSQLite, cfg.DataBackend)
	assert.Empty(t, cfg.APITokens)
	assert.False(t, cfg.PaymentGatewayMock)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATA_BACKEND", "DynamoDB")
	t.Setenv("API_TOKENS", " tok-a, ,tok-b ")
	t.Setenv("MERCADOPAGO_MOCK", "yes")
	cfg := Load()

	assert.Equal(t, BackendDynamoDB, cfg.DataBackend)
	assert.Equal(t, []string{"tok-a", "tok-b"}, cfg.APITokens)
	assert.True(t, cfg.PaymentGatewayMock)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := &Config{
		Port:                "http",
		DataBackend:         "postgres",
		Timezone:            "Mars/Olympus",
		AMQPURL:             "http://broker",
		GoogleSpreadsheetID: "sheet",
	}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"invalid port", "invalid data backend", "invalid timezone", "AMQP URL scheme", "GOOGLE_SERVICE_ACCOUNT_FILE"} {
		assert.True(t, strings.Contains(err.Error(), want), "missing %q in %v", want, err)
	}
}

func TestCLIConfig_RoundTrip(t *testing.T) {
	t.Setenv("MARCENARIA_API_URL", "")
	t.Setenv("MARCENARIA_TOKEN", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadCLI(path)
	require.NoError(t, err)
	assert.Equal(t, defaultAPIURL, cfg.Gateway.BaseURL)

	cfg.Gateway.BaseURL = "https://api.example.com/v1"
	cfg.Session.Token = "secret"
	require.NoError(t, SaveCLI(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadCLI(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	t.Setenv("MARCENARIA_TOKEN", "from-env")
	loaded, err = LoadCLI(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", loaded.Session.Token)
}

func TestLoadCLI_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[gateway\nbase_url = 1"), 0o600))
	_, err := LoadCLI(path)
	assert.Error(t, err)
}
