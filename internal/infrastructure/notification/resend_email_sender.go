package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"marcenaria_mdf/internal/domain/entities"
	"marcenaria_mdf/internal/usecase/interfaces"
)

const defaultResendBaseURL = "https://api.resend.com"

var ErrMissingResendAPIKey = errors.New("missing RESEND_API_KEY")

// ResendEmailSender delivers budget emails through the Resend HTTP API.
type ResendEmailSender struct {
	apiKey  string
	from    string
	company string
	baseURL string
	client  *http.Client
}

var _ interfaces.IEmailSender = (*ResendEmailSender)(nil)

type ResendOptions struct {
	APIKey  string
	From    string
	Company string
	BaseURL string
	Timeout time.Duration
}

func NewResendEmailSender(opts ResendOptions) (*ResendEmailSender, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingResendAPIKey
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Company == "" {
		opts.Company = "Marcenaria MDF"
	}
	return &ResendEmailSender{
		apiKey:  opts.APIKey,
		from:    opts.From,
		company: opts.Company,
		baseURL: strings.TrimRight(valueOr(opts.BaseURL, defaultResendBaseURL), "/"),
		client:  &http.Client{Timeout: opts.Timeout},
	}, nil
}

type resendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (s *ResendEmailSender) Send(ctx context.Context, msg entities.EmailMessage) error {
	subject, html, err := s.render(msg)
	if err != nil {
		return err
	}

	body, err := json.Marshal(resendRequest{From: s.from, To: msg.ToEmail, Subject: subject, HTML: html})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[notification][email] request failed to=%s err=%v", msg.ToEmail, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		log.Printf("[notification][email] rejected to=%s status=%d", msg.ToEmail, resp.StatusCode)
		return fmt.Errorf("resend: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	log.Printf("[notification][email] sent to=%s template=%s", msg.ToEmail, msg.Template)
	return nil
}

type emailView struct {
	entities.EmailMessage
	Company     string
	StatusColor string
}

func (s *ResendEmailSender) render(msg entities.EmailMessage) (string, string, error) {
	view := emailView{EmailMessage: msg, Company: s.company, StatusColor: "#ef4444"}
	if msg.StatusLabel == entities.BudgetStatusApproved.Label() {
		view.StatusColor = "#10b981"
	}

	var subject string
	var tmpl *template.Template
	switch msg.Template {
	case entities.EmailTemplateBudgetCreated:
		subject = "✅ Novo Orçamento: " + msg.BudgetTitle
		tmpl = budgetCreatedTmpl
	case entities.EmailTemplateStatusUpdated:
		subject = fmt.Sprintf("📋 Orçamento %s: %s", msg.StatusLabel, msg.BudgetTitle)
		tmpl = statusUpdatedTmpl
	default:
		return "", "", fmt.Errorf("unknown email template %q", msg.Template)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}

func valueOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

const emailLayout = `{{define "layout"}}<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
      {{template "content" .}}
      <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 30px 0;">
      <p style="color: #6b7280; font-size: 12px;">Este é um email automático da {{.Company}}. Não responda este email.</p>
    </div>
  </body>
</html>{{end}}`

var budgetCreatedTmpl = template.Must(template.Must(template.New("created").Parse(emailLayout)).Parse(`{{define "content"}}
      <h2 style="color: #1f2937;">✅ Novo Orçamento Criado</h2>
      <p>Olá <strong>{{.ToName}}</strong>,</p>
      <p>Um novo orçamento foi criado para você:</p>
      <div style="background-color: #f3f4f6; padding: 15px; border-radius: 8px; margin: 20px 0;">
        <p><strong>Título:</strong> {{.BudgetTitle}}</p>
        <p><strong>Valor:</strong> R$ {{.BudgetAmount}}</p>
        <p><strong>Número:</strong> {{.BudgetNumber}}</p>
        <p><strong>ID do Orçamento:</strong> {{.BudgetID}}</p>
        <p><strong>Data:</strong> {{.Date}} às {{.Time}}</p>
      </div>
      <p>Você pode acompanhar o status do seu orçamento no sistema.</p>
{{end}}{{template "layout" .}}`))

var statusUpdatedTmpl = template.Must(template.Must(template.New("status").Parse(emailLayout)).Parse(`{{define "content"}}
      <h2 style="color: #1f2937;">📋 Atualização de Orçamento</h2>
      <p>Olá <strong>{{.ToName}}</strong>,</p>
      <p>Seu orçamento foi atualizado:</p>
      <div style="background-color: #f3f4f6; padding: 15px; border-radius: 8px; margin: 20px 0;">
        <p><strong>Título:</strong> {{.BudgetTitle}}</p>
        <p><strong>Valor:</strong> R$ {{.BudgetAmount}}</p>
        <p><strong>Status:</strong> <span style="color: {{.StatusColor}}; font-weight: bold;">{{.StatusLabel}}</span></p>
        <p><strong>Data:</strong> {{.Date}} às {{.Time}}</p>
      </div>
      <p>Entre em contato conosco se tiver dúvidas.</p>
{{end}}{{template "layout" .}}`))
