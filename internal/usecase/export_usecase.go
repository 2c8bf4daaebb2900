package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"strings"
	"text/template"
	"time"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/identity"
	"marcenaria_mdf/internal/domain/money"
	"marcenaria_mdf/internal/usecase/interfaces"
)

var ErrSheetsNotConfigured = errors.New("spreadsheet publishing not configured")

var (
	budgetExportHeader   = []string{"Número", "ID", "Título", "Cliente", "Subtotal", "Desconto", "Total Final", "Status", "Data"}
	customerExportHeader = []string{"ID", "Nome", "CPF/CNPJ", "Email", "Telefone", "Cidade", "UF", "Data de Cadastro"}
)

// IExportUseCase produces downloadable renditions of the stored data.
type IExportUseCase interface {
	BudgetsCSV(ctx context.Context) ([]byte, error)
	CustomersCSV(ctx context.Context) ([]byte, error)
	PublishBudgets(ctx context.Context) (int, error)
	BudgetDocument(ctx context.Context, id string) ([]byte, string, error)
}

type ExportUseCase struct {
	budgets     IBudgetUseCase
	customers   ICustomerUseCase
	sheets      interfaces.ISheetPublisher
	companyName string
	loc         *time.Location
}

var _ IExportUseCase = (*ExportUseCase)(nil)

// NewExportUseCase builds the use case. sheets may be nil.
func NewExportUseCase(budgets IBudgetUseCase, customers ICustomerUseCase, sheets interfaces.ISheetPublisher, companyName string, loc *time.Location) *ExportUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportUseCase{budgets: budgets, customers: customers, sheets: sheets, companyName: companyName, loc: loc}
}

func (u *ExportUseCase) BudgetsCSV(ctx context.Context) ([]byte, error) {
	rows, err := u.budgetRows(ctx)
	if err != nil {
		return nil, err
	}
	return writeCSV(budgetExportHeader, rows)
}

func (u *ExportUseCase) CustomersCSV(ctx context.Context) ([]byte, error) {
	customers, err := u.customers.List(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, []string{
			c.ID,
			c.Name,
			identity.FormatTaxID(c.TaxID),
			c.Email,
			identity.FormatPhone(c.Phone),
			c.City,
			c.State,
			u.date(c.CreatedAt),
		})
	}
	return writeCSV(customerExportHeader, rows)
}

// PublishBudgets replaces the configured sheet with the budget table.
func (u *ExportUseCase) PublishBudgets(ctx context.Context) (int, error) {
	if u.sheets == nil {
		return 0, ErrSheetsNotConfigured
	}
	rows, err := u.budgetRows(ctx)
	if err != nil {
		return 0, err
	}
	n, err := u.sheets.Publish(ctx, budgetExportHeader, rows)
	if err != nil {
		log.Printf("[export][usecase] sheets publish failed rows=%d err=%v", len(rows), err)
		return 0, err
	}
	log.Printf("[export][usecase] sheets publish success rows=%d", n)
	return n, nil
}

// BudgetDocument renders a plain-text quote for one budget.
func (u *ExportUseCase) BudgetDocument(ctx context.Context, id string) ([]byte, string, error) {
	b, err := u.budgets.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	c, err := u.customers.Resolve(ctx, b.CustomerID)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := budgetDocumentTmpl.Execute(&buf, documentView{
		Company:  u.companyName,
		Budget:   b,
		Customer: c,
		Date:     b.CreatedAt.In(u.loc).Format("02/01/2006 15:04"),
	}); err != nil {
		return nil, "", err
	}
	name := fmt.Sprintf("orcamento-%s.txt", documentSlug(b))
	return buf.Bytes(), name, nil
}

func (u *ExportUseCase) budgetRows(ctx context.Context) ([][]string, error) {
	budgets, err := u.budgets.List(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := u.customers.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}

	rows := make([][]string, 0, len(budgets))
	for _, b := range budgets {
		name := "-"
		if n, ok := names[b.CustomerID]; ok && b.CustomerID != "" {
			name = n
		}
		rows = append(rows, []string{
			b.SequentialNumber,
			b.ID,
			b.Title,
			name,
			money.Format2(b.SubtotalAmount),
			discountLabel(b.Discount),
			money.Format2(b.FinalAmount),
			string(b.Status),
			u.date(b.CreatedAt),
		})
	}
	return rows, nil
}

func (u *ExportUseCase) date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(u.loc).Format("02/01/2006")
}

func discountLabel(d entities.Discount) string {
	if d.Type == entities.DiscountTypePercent {
		return d.Value.String() + "%"
	}
	return money.Format2(d.Value)
}

func documentSlug(b entities.Budget) string {
	if b.SequentialNumber != "" {
		return b.SequentialNumber
	}
	return b.ID
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type documentView struct {
	Company  string
	Budget   entities.Budget
	Customer entities.Customer
	Date     string
}

var budgetDocumentTmpl = template.Must(template.New("budget").Funcs(template.FuncMap{
	"brl":      money.FormatBRL,
	"phone":    identity.FormatPhone,
	"taxid":    identity.FormatTaxID,
	"discount": discountLabel,
	"upper":    strings.ToUpper,
	"join":     strings.Join,
	"inc":      func(i int) int { return i + 1 },
}).Parse(`ORÇAMENTO {{.Budget.SequentialNumber}}
{{.Company}}

DADOS DO CLIENTE
Nome: {{if .Customer.Name}}{{.Customer.Name}}{{else}}-{{end}}
{{- with .Customer.TaxID}}
CPF/CNPJ: {{taxid .}}{{end}}
{{- with .Customer.Email}}
Email: {{.}}{{end}}
{{- with .Customer.Phone}}
Telefone: {{phone .}}{{end}}

DETALHES DO ORÇAMENTO
Título: {{.Budget.Title}}
ID: {{.Budget.ID}}
Data: {{.Date}}
Status: {{upper (printf "%s" .Budget.Status)}}

ITENS
{{- range $i, $it := .Budget.Items}}
{{printf "%2d" (inc $i)}}. {{$it.Description}} ({{$it.UnitType}}) {{$it.Quantity}} x {{brl $it.UnitPrice}} = {{brl $it.TotalPrice}}
{{- end}}

Subtotal: {{brl .Budget.SubtotalAmount}}
Desconto: {{discount .Budget.Discount}}
TOTAL: {{brl .Budget.FinalAmount}}
{{- with .Budget.PaymentConditions}}

Condições de pagamento: {{.}}{{end}}
{{- with .Budget.PaymentMethods}}
Formas de pagamento: {{join . ", "}}{{end}}
`))
