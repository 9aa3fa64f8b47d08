package services

import (
	"context"
	"fmt"
	"log"

	"eventalbum/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendShareLink sends the organizer their album's guest link using the "share_link" template.
func (s *emailService) SendShareLink(ctx context.Context, data *domain.ShareLinkEmailData) error {
	if data == nil {
		return fmt.Errorf("share link data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("share_link", data)
	if err != nil {
		return fmt.Errorf("failed to render share_link template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send share link email: %w", err)
	}
	log.Printf("[EMAIL] Share link for %s sent to %s", data.Slug, data.Email)
	return nil
}
