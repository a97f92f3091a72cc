package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/Batussaii/BANT3D/sender"
)

// ContactRequest is a quote/contact form submission, optionally with one
// attached file.
type ContactRequest struct {
	Name       string
	Email      string
	Service    string
	Budget     string
	Details    string
	Attachment *sender.Attachment
}

// ColorRequest asks about a custom color for a product.
type ColorRequest struct {
	Product string
	Name    string
	Phone   string
	Email   string
	Color   string
	Notes   string
}

// ContactService relays the storefront forms to the configured mailbox.
type ContactService interface {
	SendContactRequest(ctx context.Context, req *ContactRequest) *ServiceError
	SendColorRequest(ctx context.Context, req *ColorRequest) *ServiceError
}

type contactServiceImpl struct {
	mailer sender.EmailSender
	to     string
	logger *zap.Logger
}

// NewContactService creates a new ContactService.
func NewContactService(mailer sender.EmailSender, to string, logger *zap.Logger) ContactService {
	return &contactServiceImpl{mailer: mailer, to: to, logger: logger}
}

func (s *contactServiceImpl) SendContactRequest(ctx context.Context, req *ContactRequest) *ServiceError {
	subject := fmt.Sprintf("Nueva solicitud - %s", orDefault(req.Name, "Sin nombre"))

	fields := []field{
		{"Nombre", req.Name},
		{"Email", req.Email},
		{"Servicio", req.Service},
		{"Presupuesto", req.Budget},
		{"Detalles", req.Details},
	}
	textBody, htmlBody := formEmailBodies("Nueva solicitud", fields)

	var attachments []sender.Attachment
	if req.Attachment != nil {
		attachments = append(attachments, *req.Attachment)
	}

	if _, err := s.mailer.SendEmail(ctx, s.to, subject, textBody, htmlBody, attachments); err != nil {
		s.logger.Error("contact request mail failed", zap.Error(err))
		return NewNotificationError("No se pudo enviar la solicitud.")
	}
	return nil
}

func (s *contactServiceImpl) SendColorRequest(ctx context.Context, req *ColorRequest) *ServiceError {
	subject := fmt.Sprintf("Consulta color - %s", orDefault(req.Product, "Producto"))

	fields := []field{
		{"Producto", req.Product},
		{"Nombre", req.Name},
		{"Telefono", req.Phone},
		{"Email", req.Email},
		{"Color", req.Color},
		{"Observaciones", req.Notes},
	}
	textBody, htmlBody := formEmailBodies("Consulta color especial", fields)

	if _, err := s.mailer.SendEmail(ctx, s.to, subject, textBody, htmlBody, nil); err != nil {
		s.logger.Error("color request mail failed", zap.Error(err))
		return NewNotificationError("No se pudo enviar la consulta.")
	}
	return nil
}

type field struct {
	label string
	value string
}

func formEmailBodies(title string, fields []field) (string, string) {
	var text strings.Builder
	var htm strings.Builder

	fmt.Fprintf(&htm, "<h2>%s</h2>", html.EscapeString(title))
	for _, f := range fields {
		fmt.Fprintf(&text, "%s: %s\n", f.label, orDash(f.value))
		fmt.Fprintf(&htm, "<p><strong>%s:</strong> %s</p>",
			html.EscapeString(f.label), html.EscapeString(orDash(f.value)))
	}
	return strings.TrimSpace(text.String()), htm.String()
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
