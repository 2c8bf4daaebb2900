package notification

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/domain/identity"
	"marcenaria_mdf/internal/usecase/interfaces"
)

const whatsAppBaseURL = "https://wa.me/"

// WhatsAppLinkGenerator builds wa.me links; the user sends the message by hand.
type WhatsAppLinkGenerator struct {
	company string
}

var _ interfaces.ILinkGenerator = (*WhatsAppLinkGenerator)(nil)

func NewWhatsAppLinkGenerator(company string) *WhatsAppLinkGenerator {
	return &WhatsAppLinkGenerator{company: valueOr(company, "Marcenaria MDF")}
}

func (g *WhatsAppLinkGenerator) Generate(_ context.Context, req entities.LinkRequest) entities.LinkResult {
	if err := identity.ValidatePhone(req.Phone); err != nil {
		return entities.LinkResult{Message: "Telefone deve ter 10 ou 11 dígitos"}
	}

	phone := "55" + identity.NationalPhone(req.Phone)
	text := strings.ReplaceAll(url.QueryEscape(g.Message(req)), "+", "%20")

	return entities.LinkResult{
		Success: true,
		Link:    whatsAppBaseURL + phone + "?text=" + text,
		Message: "Link WhatsApp gerado com sucesso! Clique para enviar a mensagem.",
	}
}

// Message renders the text the customer receives.
func (g *WhatsAppLinkGenerator) Message(req entities.LinkRequest) string {
	ref := req.BudgetID
	if req.BudgetNumber != "" {
		ref = req.BudgetNumber
	}
	return fmt.Sprintf(`Olá %s! 👋

Você recebeu um novo *orçamento* de %s! 🎉

📋 *Detalhes do Orçamento:*
• Título: %s
• Valor Total: R$ %s
• Número: %s
• Data: %s

Para mais informações ou dúvidas, entre em contato conosco!

Obrigado! 😊`,
		req.CustomerName,
		g.company,
		req.BudgetTitle,
		req.BudgetAmount,
		ref,
		req.IssuedAt.Format("02/01/2006 às 15:04"),
	)
}
