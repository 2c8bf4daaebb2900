package entities

import "time"

type BudgetEventType string

const (
	BudgetEventCreated BudgetEventType = "budget.created"
	BudgetEventUpdated BudgetEventType = "budget.updated"
	BudgetEventDeleted BudgetEventType = "budget.deleted"
)

// BudgetEvent is emitted after a budget mutation has been persisted.
type BudgetEvent struct {
	Type           BudgetEventType `json:"type"`
	Budget         Budget          `json:"budget"`
	Customer       Customer        `json:"customer"`
	PreviousStatus BudgetStatus    `json:"previous_status,omitempty"`
	NotifyCustomer bool            `json:"-"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

func (e BudgetEvent) StatusChanged() bool {
	return e.PreviousStatus != "" && e.PreviousStatus != e.Budget.Status
}

type EmailTemplate string

const (
	EmailTemplateBudgetCreated EmailTemplate = "budget_created"
	EmailTemplateStatusUpdated EmailTemplate = "status_updated"
)

// EmailMessage carries the template fields of a customer email.
// Date and Time are already localized (02/01/2006, 15:04:05).
type EmailMessage struct {
	Template     EmailTemplate
	ToEmail      string
	ToName       string
	BudgetTitle  string
	BudgetAmount string
	BudgetID     string
	BudgetNumber string
	StatusLabel  string
	Date         string
	Time         string
}

// LinkRequest is what a deep-link generator needs to prefill a message.
type LinkRequest struct {
	Phone        string
	CustomerName string
	BudgetTitle  string
	BudgetAmount string
	BudgetID     string
	BudgetNumber string
	IssuedAt     time.Time
}

type LinkResult struct {
	Success bool   `json:"success"`
	Link    string `json:"link,omitempty"`
	Message string `json:"message"`
}
