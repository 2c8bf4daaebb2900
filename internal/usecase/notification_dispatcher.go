package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/errs"
	"marcenaria_mdf/internal/domain/money"
	"marcenaria_mdf/internal/usecase/interfaces"
)

const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
	ChannelObserver = "observer"
)

var (
	ErrNoRecipientEmail     = errors.New("customer has no email")
	ErrEmailNotConfigured   = errors.New("email sender not configured")
	errLinkGeneratorMissing = errors.New("link generator not configured")
)

// NotificationWarning reports a side-channel failure that did not affect
// the mutation that triggered it.
type NotificationWarning struct {
	Channel string `json:"channel"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// INotificationDispatcher fans persisted budget events out to email and observers.
type INotificationDispatcher interface {
	Subscribe(o interfaces.IBudgetObserver)
	Dispatch(ctx context.Context, ev entities.BudgetEvent) []NotificationWarning
	ShareLink(ctx context.Context, b entities.Budget, c entities.Customer) entities.LinkResult
}

type NotificationDispatcher struct {
	email interfaces.IEmailSender
	links interfaces.ILinkGenerator
	loc   *time.Location

	mu        sync.RWMutex
	observers []interfaces.IBudgetObserver
}

var _ INotificationDispatcher = (*NotificationDispatcher)(nil)

func NewNotificationDispatcher(email interfaces.IEmailSender, links interfaces.ILinkGenerator, loc *time.Location) *NotificationDispatcher {
	if loc == nil {
		loc = time.UTC
	}
	return &NotificationDispatcher{email: email, links: links, loc: loc}
}

// Subscribe registers o for every subsequent event. Nil observers are ignored.
func (d *NotificationDispatcher) Subscribe(o interfaces.IBudgetObserver) {
	if o == nil {
		return
	}
	d.mu.Lock()
	d.observers = append(d.observers, o)
	d.mu.Unlock()
	log.Printf("[notification][dispatcher] observer subscribed name=%s", observerName(o))
}

// Dispatch makes one attempt per channel. Failures and panics come back as
// warnings; Dispatch itself never fails.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, ev entities.BudgetEvent) []NotificationWarning {
	var warnings []NotificationWarning

	if msg, ok, err := d.emailFor(ev); err != nil {
		warnings = append(warnings, warn(ChannelEmail, err))
	} else if ok {
		if w := attempt(ChannelEmail, func() error { return d.email.Send(ctx, msg) }); w != nil {
			warnings = append(warnings, *w)
		} else {
			log.Printf("[notification][dispatcher] email sent budget_id=%s template=%s", ev.Budget.ID, msg.Template)
		}
	}

	d.mu.RLock()
	observers := make([]interfaces.IBudgetObserver, len(d.observers))
	copy(observers, d.observers)
	d.mu.RUnlock()

	for _, o := range observers {
		if w := attempt(observerName(o), func() error { return o.OnBudgetEvent(ctx, ev) }); w != nil {
			warnings = append(warnings, *w)
		}
	}
	return warnings
}

// emailFor decides whether ev warrants a customer email.
// Creation emails are opt-in; status changes always notify when an address is on file.
func (d *NotificationDispatcher) emailFor(ev entities.BudgetEvent) (entities.EmailMessage, bool, error) {
	var tmpl entities.EmailTemplate
	switch {
	case ev.Type == entities.BudgetEventCreated && ev.NotifyCustomer:
		tmpl = entities.EmailTemplateBudgetCreated
	case ev.Type == entities.BudgetEventUpdated && ev.StatusChanged():
		tmpl = entities.EmailTemplateStatusUpdated
	default:
		return entities.EmailMessage{}, false, nil
	}

	to := strings.TrimSpace(ev.Customer.Email)
	if to == "" {
		if ev.NotifyCustomer {
			return entities.EmailMessage{}, false, ErrNoRecipientEmail
		}
		log.Printf("[notification][dispatcher] skipping email, no address budget_id=%s", ev.Budget.ID)
		return entities.EmailMessage{}, false, nil
	}
	if d.email == nil {
		return entities.EmailMessage{}, false, ErrEmailNotConfigured
	}

	at := ev.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	at = at.In(d.loc)

	return entities.EmailMessage{
		Template:     tmpl,
		ToEmail:      to,
		ToName:       ev.Customer.Name,
		BudgetTitle:  ev.Budget.Title,
		BudgetAmount: money.Format2(ev.Budget.FinalAmount),
		BudgetID:     ev.Budget.ID,
		BudgetNumber: ev.Budget.SequentialNumber,
		StatusLabel:  ev.Budget.Status.Label(),
		Date:         at.Format("02/01/2006"),
		Time:         at.Format("15:04:05"),
	}, true, nil
}

// ShareLink builds a deep link the user can open to send the budget by hand.
func (d *NotificationDispatcher) ShareLink(ctx context.Context, b entities.Budget, c entities.Customer) (res entities.LinkResult) {
	if c.ID == "" || c.IsPlaceholder() {
		return entities.LinkResult{Message: entities.MissingCustomerName}
	}
	if strings.TrimSpace(c.Phone) == "" {
		return entities.LinkResult{Message: "Cliente sem telefone cadastrado"}
	}
	if d.links == nil {
		return entities.LinkResult{Message: errLinkGeneratorMissing.Error()}
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[notification][dispatcher] link generator panic budget_id=%s panic=%v", b.ID, r)
			res = entities.LinkResult{Message: fmt.Sprintf("Erro ao gerar link: %v", r)}
		}
	}()

	issued := b.CreatedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	return d.links.Generate(ctx, entities.LinkRequest{
		Phone:        c.Phone,
		CustomerName: c.Name,
		BudgetTitle:  b.Title,
		BudgetAmount: money.Format2(b.FinalAmount),
		BudgetID:     b.ID,
		BudgetNumber: b.SequentialNumber,
		IssuedAt:     issued.In(d.loc),
	})
}

func attempt(channel string, fn func() error) (w *NotificationWarning) {
	defer func() {
		if r := recover(); r != nil {
			nw := warn(channel, fmt.Errorf("panic: %v", r))
			w = &nw
		}
	}()
	if err := fn(); err != nil {
		nw := warn(channel, err)
		return &nw
	}
	return nil
}

// observerName is the warning channel for o; a panicking Name falls back to ChannelObserver.
func observerName(o interfaces.IBudgetObserver) (name string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[notification][dispatcher] observer name panicked: %v", r)
			name = ChannelObserver
		}
	}()
	if name = o.Name(); name == "" {
		name = ChannelObserver
	}
	return name
}

func warn(channel string, err error) NotificationWarning {
	nerr := &errs.NotificationError{Channel: channel, Err: err}
	log.Printf("[notification][dispatcher] delivery failed channel=%s err=%v", channel, err)
	return NotificationWarning{Channel: channel, Message: nerr.Error(), Err: nerr}
}
