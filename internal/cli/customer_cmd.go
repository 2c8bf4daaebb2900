package cli

import (
	"context"
	"fmt"
	"strings"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/identity"
	"marcenaria_mdf/internal/usecase"

	"github.com/spf13/cobra"
)

func newCustomersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"customer", "clientes"},
		Short:   "Manage customers",
	}

	cmd.AddCommand(
		newCustomerListCmd(app),
		newCustomerCreateCmd(app),
		newCustomerDeleteCmd(app),
	)
	return cmd
}

func newCustomerListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List customers by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireCustomers(); err != nil {
				return err
			}
			customers, err := app.Customers.List(context.Background())
			if err != nil {
				return err
			}
			if len(customers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nenhum cliente cadastrado.")
				return nil
			}

			rows := make([][]string, 0, len(customers))
			for _, c := range customers {
				rows = append(rows, []string{
					c.Name,
					identity.FormatTaxID(c.TaxID),
					identity.FormatPhone(c.Phone),
					c.Email,
					c.City,
					c.ID,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), app.table([]string{"NOME", "CPF/CNPJ", "TELEFONE", "EMAIL", "CIDADE", "ID"}, rows))
			return nil
		},
	}
}

func newCustomerCreateCmd(app *App) *cobra.Command {
	var in usecase.CustomerInput
	var personType string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a customer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireCustomers(); err != nil {
				return err
			}
			in.PersonType = entities.PersonType(strings.ToLower(strings.TrimSpace(personType)))

			c, err := app.Customers.Create(context.Background(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s cliente %s cadastrado\n", app.style(okStyle, "✓"), c.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "  ID: %s\n", c.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "Customer name")
	f.StringVar(&personType, "type", string(entities.PersonTypeIndividual), "individual (CPF) or company (CNPJ)")
	f.StringVar(&in.TaxID, "tax-id", "", "CPF or CNPJ")
	f.StringVar(&in.Phone, "phone", "", "Phone with area code")
	f.StringVar(&in.Email, "email", "", "Email address")
	f.StringVar(&in.PostalCode, "cep", "", "Postal code (CEP)")
	f.StringVar(&in.Street, "street", "", "Street")
	f.StringVar(&in.Number, "number", "", "Street number")
	f.StringVar(&in.Complement, "complement", "", "Address complement")
	f.StringVar(&in.Neighborhood, "neighborhood", "", "Neighborhood")
	f.StringVar(&in.City, "city", "", "City")
	f.StringVar(&in.State, "state", "", "State (UF)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCustomerDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a customer; their budgets are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireCustomers(); err != nil {
				return err
			}
			if err := app.Customers.Delete(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s cliente %s removido\n", app.style(okStyle, "✓"), args[0])
			return nil
		},
	}
}
