package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marcenaria_mdf/internal/adapter/gateway/httpgateway"
	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/money"
	"marcenaria_mdf/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newBudgetsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budgets",
		Aliases: []string{"budget", "orcamentos"},
		Short:   "Manage budgets",
	}

	cmd.AddCommand(
		newBudgetListCmd(app),
		newBudgetShowCmd(app),
		newBudgetCreateCmd(app),
		newBudgetStatusCmd(app),
		newBudgetDeleteCmd(app),
		newBudgetShareCmd(app),
	)
	return cmd
}

func newBudgetListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List budgets, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireBudgets(); err != nil {
				return err
			}
			ctx := context.Background()

			budgets, err := app.Budgets.List(ctx)
			if err != nil {
				return err
			}
			if len(budgets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nenhum orçamento cadastrado.")
				return nil
			}

			names := map[string]string{}
			if app.Customers != nil {
				if customers, err := app.Customers.List(ctx); err == nil {
					for _, c := range customers {
						names[c.ID] = c.Name
					}
				}
			}

			rows := make([][]string, 0, len(budgets))
			for _, b := range budgets {
				rows = append(rows, []string{
					b.SequentialNumber,
					b.Title,
					customerLabel(names, b.CustomerID),
					money.FormatBRL(b.FinalAmount),
					app.status(b.Status),
					b.ID,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), app.table([]string{"NÚMERO", "TÍTULO", "CLIENTE", "TOTAL", "STATUS", "ID"}, rows))
			return nil
		},
	}
}

func newBudgetShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one budget with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireBudgets(); err != nil {
				return err
			}
			ctx := context.Background()

			b, err := app.Budgets.Get(ctx, args[0])
			if err != nil {
				return err
			}
			customer := "-"
			if b.CustomerID != "" && app.Customers != nil {
				if c, err := app.Customers.Resolve(ctx, b.CustomerID); err == nil {
					customer = c.Name
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, app.title(fmt.Sprintf("Orçamento %s", b.SequentialNumber)))
			fmt.Fprintf(out, "Título:   %s\n", b.Title)
			fmt.Fprintf(out, "Cliente:  %s\n", customer)
			fmt.Fprintf(out, "Status:   %s\n", app.status(b.Status))
			fmt.Fprintf(out, "ID:       %s\n", app.style(mutedStyle, b.ID))
			fmt.Fprintln(out)

			rows := make([][]string, 0, len(b.Items))
			for i, it := range b.Items {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					it.Description,
					string(it.UnitType),
					it.Quantity.String(),
					money.FormatBRL(it.UnitPrice),
					money.FormatBRL(it.TotalPrice),
				})
			}
			fmt.Fprint(out, app.table([]string{"#", "ITEM", "UNIDADE", "QTD", "UNITÁRIO", "TOTAL"}, rows))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Subtotal: %s\n", money.FormatBRL(b.SubtotalAmount))
			fmt.Fprintf(out, "Desconto: %s\n", discountText(b.Discount))
			fmt.Fprintf(out, "Total:    %s\n", app.style(okStyle, money.FormatBRL(b.FinalAmount)))
			if b.PaymentConditions != "" {
				fmt.Fprintf(out, "Condições: %s\n", b.PaymentConditions)
			}
			if len(b.PaymentMethods) > 0 {
				fmt.Fprintf(out, "Formas de pagamento: %s\n", strings.Join(b.PaymentMethods, ", "))
			}
			return nil
		},
	}
}

func newBudgetCreateCmd(app *App) *cobra.Command {
	var (
		title, customerID, discount, conditions, drawing string
		items, methods                                   []string
		notify                                           bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft budget",
		Example: `  budgetctl budgets create --title "Cozinha" --customer <id> \
    --item "Armário superior;unit;2;850" --item "Bancada;length;2,5;400" --discount 10%`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireBudgets(); err != nil {
				return err
			}
			parsedItems, err := parseItems(items)
			if err != nil {
				return err
			}
			d, err := parseDiscount(discount)
			if err != nil {
				return err
			}

			ctx := httpgateway.WithNotify(context.Background(), notify)
			res, err := app.Budgets.Create(ctx, usecase.CreateBudgetInput{
				Title:             title,
				CustomerID:        customerID,
				Items:             parsedItems,
				Discount:          d,
				PaymentConditions: conditions,
				PaymentMethods:    methods,
				DrawingRef:        drawing,
				Notify:            notify,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s orçamento %s criado, total %s\n",
				app.style(okStyle, "✓"), res.Budget.SequentialNumber, money.FormatBRL(res.Budget.FinalAmount))
			fmt.Fprintf(out, "  ID: %s\n", res.Budget.ID)
			app.printWarnings(out, res.Warnings)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Budget title")
	cmd.Flags().StringVar(&customerID, "customer", "", "Customer ID")
	cmd.Flags().StringArrayVar(&items, "item", nil, `Item as "description;unit|length;quantity;unit price" (repeatable)`)
	cmd.Flags().StringVar(&discount, "discount", "", `Discount: "50" for a fixed amount or "10%"`)
	cmd.Flags().StringVar(&conditions, "conditions", "", "Payment conditions")
	cmd.Flags().StringArrayVar(&methods, "method", nil, "Accepted payment method (repeatable)")
	cmd.Flags().StringVar(&drawing, "drawing", "", "Reference to the project drawing")
	cmd.Flags().BoolVar(&notify, "notify", false, "Email the customer when the budget is created")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newBudgetStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <draft|sent|approved|rejected|paid>",
		Short: "Move a budget through its lifecycle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireBudgets(); err != nil {
				return err
			}
			status := entities.BudgetStatus(strings.ToLower(strings.TrimSpace(args[1])))

			res, err := app.Budgets.TransitionStatus(context.Background(), args[0], status)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s orçamento %s agora está %s\n",
				app.style(okStyle, "✓"), res.Budget.SequentialNumber, app.status(res.Budget.Status))
			app.printWarnings(out, res.Warnings)
			return nil
		},
	}
}

func newBudgetDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireBudgets(); err != nil {
				return err
			}
			if err := app.Budgets.Delete(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s orçamento %s removido\n", app.style(okStyle, "✓"), args[0])
			return nil
		},
	}
}

func newBudgetShareCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "share <id>",
		Short: "Print the WhatsApp link to send the budget to its customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Links == nil {
				return errors.New("share links are not configured")
			}
			res, err := app.Links.ShareLink(context.Background(), args[0])
			if err != nil {
				return err
			}
			if !res.Success {
				return errors.New(res.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Link)
			return nil
		},
	}
}

// parseItems reads "description;unit type;quantity;unit price". The
// description may itself contain ';'. Decimal commas are accepted.
func parseItems(raw []string) ([]entities.BudgetItem, error) {
	items := make([]entities.BudgetItem, 0, len(raw))
	for i, s := range raw {
		parts := strings.Split(s, ";")
		if len(parts) < 4 {
			return nil, fmt.Errorf("item %d: expected \"description;unit;quantity;price\", got %q", i+1, s)
		}
		n := len(parts)
		unit, err := parseUnitType(parts[n-3])
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		qty, err := parseDecimal(parts[n-2])
		if err != nil {
			return nil, fmt.Errorf("item %d: quantity: %w", i+1, err)
		}
		price, err := parseDecimal(parts[n-1])
		if err != nil {
			return nil, fmt.Errorf("item %d: price: %w", i+1, err)
		}
		items = append(items, entities.BudgetItem{
			Description: strings.TrimSpace(strings.Join(parts[:n-3], ";")),
			UnitType:    unit,
			Quantity:    qty,
			UnitPrice:   price,
		})
	}
	return items, nil
}

func parseUnitType(s string) (entities.UnitType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unit", "un", "unidade":
		return entities.UnitTypeUnit, nil
	case "length", "m", "metro":
		return entities.UnitTypeLength, nil
	}
	return "", fmt.Errorf("unknown unit type %q", s)
}

func parseDiscount(s string) (entities.Discount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return entities.NoDiscount(), nil
	}
	if strings.HasSuffix(s, "%") {
		v, err := parseDecimal(strings.TrimSuffix(s, "%"))
		if err != nil {
			return entities.Discount{}, fmt.Errorf("discount: %w", err)
		}
		return entities.PercentDiscount(v), nil
	}
	v, err := parseDecimal(s)
	if err != nil {
		return entities.Discount{}, fmt.Errorf("discount: %w", err)
	}
	return entities.FixedDiscount(v), nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

func discountText(d entities.Discount) string {
	if d.Type == entities.DiscountTypePercent {
		return d.Value.String() + "%"
	}
	return money.FormatBRL(d.Value)
}

func customerLabel(names map[string]string, id string) string {
	if id == "" {
		return "-"
	}
	if n, ok := names[id]; ok {
		return n
	}
	return entities.MissingCustomerName
}
