package services

import (
	"context"
	"fmt"
	"log/slog"

	"cfpportal/internal/domain"
)

const templatePresentationSubmitted = "presentation_submitted"

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendPresentationSubmitted sends the submission confirmation using the "presentation_submitted" template.
func (s *emailService) SendPresentationSubmitted(ctx context.Context, data *domain.PresentationSubmittedEmailData) error {
	if data == nil {
		return fmt.Errorf("presentation submitted data is nil")
	}
	if data.Email == "" {
		return fmt.Errorf("presentation submitted email: %w", domain.ErrInvalidInput)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(templatePresentationSubmitted, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templatePresentationSubmitted, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send presentation submitted email: %w", err)
	}
	s.logger.InfoContext(ctx, "presentation submitted email sent", "presentation_id", data.PresentationID)
	return nil
}
