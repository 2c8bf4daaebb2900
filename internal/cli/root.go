// Package cli implements the budgetctl commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"marcenaria_mdf/internal/adapter/http/dto/response"
	"marcenaria_mdf/internal/config"
	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/errs"
	"marcenaria_mdf/internal/usecase"

	"github.com/spf13/cobra"
)

// ShareLinker asks the server for a budget's WhatsApp link.
type ShareLinker interface {
	ShareLink(ctx context.Context, id string) (entities.LinkResult, error)
}

// WarningSource drains notification warnings reported by the server.
type WarningSource interface {
	TakeWarnings() []response.WarningResponse
}

// App holds everything the commands need. Budgets and Customers run locally
// on top of the HTTP gateway.
type App struct {
	Budgets   usecase.IBudgetUseCase
	Customers usecase.ICustomerUseCase
	Links     ShareLinker
	Warnings  WarningSource

	ConfigPath string
	Config     config.CLIConfig

	// Plain disables colors, e.g. when stdout is not a terminal.
	Plain bool
}

// NewRootCmd creates the top-level "budgetctl" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "budgetctl",
		Short:         "Manage budgets (orçamentos) and customers of the shop",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newBudgetsCmd(app),
		newCustomersCmd(app),
	)
	return root
}

// ReportError prints err for humans. Auth failures ask for a new login.
func ReportError(w io.Writer, err error) {
	if errors.Is(err, errs.ErrAuth) {
		fmt.Fprintf(w, "Sessão inválida ou expirada: %v\n", err)
		fmt.Fprintln(w, "Faça login novamente: budgetctl login --token <token>")
		return
	}
	fmt.Fprintf(w, "Erro: %v\n", err)
}

func (a *App) printWarnings(w io.Writer, local []usecase.NotificationWarning) {
	for _, nw := range local {
		fmt.Fprintln(w, a.style(warnStyle, fmt.Sprintf("aviso (%s): %s", nw.Channel, nw.Message)))
	}
	if a.Warnings == nil {
		return
	}
	for _, nw := range a.Warnings.TakeWarnings() {
		fmt.Fprintln(w, a.style(warnStyle, fmt.Sprintf("aviso (%s): %s", nw.Channel, nw.Message)))
	}
}

func (a *App) requireBudgets() error {
	if a.Budgets == nil {
		return errors.New("budget service is not configured")
	}
	return nil
}

func (a *App) requireCustomers() error {
	if a.Customers == nil {
		return errors.New("customer service is not configured")
	}
	return nil
}
