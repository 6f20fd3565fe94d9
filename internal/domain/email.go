package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// PresentationSubmittedEmailData holds data for the submission confirmation.
type PresentationSubmittedEmailData struct {
	Email             string
	FirstName         string
	PresentationID    int64
	PresentationTitle string
	SelectionPlanName string
	SummitName        string
	SubmissionEndsAt  string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendPresentationSubmitted(ctx context.Context, data *PresentationSubmittedEmailData) error
}
