package notification

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"marcenaria_mdf/internal/domain/entities"
)

func TestWhatsAppLinkGenerator_Generate(t *testing.T) {
	g := NewWhatsAppLinkGenerator("")
	req := entities.LinkRequest{
		Phone:        "11987654321",
		CustomerName: "Maria",
		BudgetTitle:  "Cozinha & Sala",
		BudgetAmount: "1579.50",
		BudgetID:     "b-1",
		BudgetNumber: "2026-001",
		IssuedAt:     time.Date(2026, 3, 10, 14, 5, 0, 0, time.UTC),
	}

	t.Run("builds a wa.me link with country code", func(t *testing.T) {
		res := g.Generate(context.Background(), req)
		if !res.Success {
			t.Fatalf("expected success, got %+v", res)
		}
		if !strings.HasPrefix(res.Link, "https://wa.me/5511987654321?text=") {
			t.Fatalf("unexpected link: %s", res.Link)
		}
		if strings.Contains(res.Link, "+") {
			t.Fatalf("spaces must be percent-encoded: %s", res.Link)
		}

		u, err := url.Parse(res.Link)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		text := u.Query().Get("text")
		for _, want := range []string{"Olá Maria!", "Cozinha & Sala", "R$ 1579.50", "Número: 2026-001", "10/03/2026 às 14:05", "Marcenaria MDF"} {
			if !strings.Contains(text, want) {
				t.Fatalf("message missing %q:\n%s", want, text)
			}
		}
	})

	t.Run("already prefixed phone is not doubled", func(t *testing.T) {
		r := req
		r.Phone = "+55 (11) 98765-4321"
		res := g.Generate(context.Background(), r)
		if !strings.HasPrefix(res.Link, "https://wa.me/5511987654321?") {
			t.Fatalf("unexpected link: %s", res.Link)
		}
	})

	t.Run("invalid phone", func(t *testing.T) {
		r := req
		r.Phone = "1234"
		if res := g.Generate(context.Background(), r); res.Success || res.Link != "" {
			t.Fatalf("expected failure, got %+v", res)
		}
	})
}
