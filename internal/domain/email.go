package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// ShareLinkEmailData holds data for the email sent to an organizer once their album exists.
type ShareLinkEmailData struct {
	Email          string
	PartnerOneName string
	PartnerTwoName string
	ShareURL       string
	Slug           string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendShareLink(ctx context.Context, data *ShareLinkEmailData) error
}
