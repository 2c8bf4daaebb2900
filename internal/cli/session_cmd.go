package cli

import (
	"errors"
	"fmt"
	"strings"

	"marcenaria_mdf/internal/config"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var token, apiURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the API token used by every other command",
		RunE: func(cmd *cobra.Command, args []string) error {
			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("--token must not be empty")
			}
			app.Config.Session.Token = token
			if u := strings.TrimSpace(apiURL); u != "" {
				app.Config.Gateway.BaseURL = u
			}
			if err := config.SaveCLI(app.ConfigPath, app.Config); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s token salvo em %s\n", app.style(okStyle, "✓"), app.ConfigPath)
			fmt.Fprintf(cmd.OutOrStdout(), "  API: %s\n", app.Config.Gateway.BaseURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "API bearer token")
	cmd.Flags().StringVar(&apiURL, "url", "", "API base URL, e.g. http://localhost:8080/v1")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Config.Session.Token = ""
			if err := config.SaveCLI(app.ConfigPath, app.Config); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sessão encerrada.")
			return nil
		},
	}
}
