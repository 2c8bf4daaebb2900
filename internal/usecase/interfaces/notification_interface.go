package interfaces

import (
	"context"
	"marcenaria_mdf/internal/domain/entities"
)

// IEmailSender delivers one templated email. A single attempt, no retries.
type IEmailSender interface {
	Send(ctx context.Context, msg entities.EmailMessage) error
}

// ILinkGenerator builds a messaging-app deep link for manual dispatch.
type ILinkGenerator interface {
	Generate(ctx context.Context, req entities.LinkRequest) entities.LinkResult
}

// IBudgetObserver is notified after every persisted budget mutation.
type IBudgetObserver interface {
	Name() string
	OnBudgetEvent(ctx context.Context, ev entities.BudgetEvent) error
}
