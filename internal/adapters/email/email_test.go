package email

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventalbum/internal/domain"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := newSESMailer(client, "albums@example.com", "Event Album")

	require.NoError(t, m.Send("org@example.com", "Ready", "<p>hi</p>", ""))
	require.NotNil(t, client.input)
	assert.Equal(t, "Event Album <albums@example.com>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"org@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Ready", aws.ToString(client.input.Message.Subject.Data))
	require.NotNil(t, client.input.Message.Body.Html)
	assert.Nil(t, client.input.Message.Body.Text)

	client.err = errors.New("throttled")
	err := m.Send("org@example.com", "Ready", "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SES")
}

func TestNewMailer_Noop(t *testing.T) {
	for _, provider := range []string{"noop", "", "smtp"} {
		m, err := NewMailer(context.Background(), MailerConfig{Provider: provider})
		require.NoError(t, err)
		assert.IsType(t, &noopMailer{}, m)
		assert.NoError(t, m.Send("a@example.com", "s", "h", "t"))
	}
}

func TestTemplateRenderer_ShareLink(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	subject, html, text, err := r.Render("share_link", &domain.ShareLinkEmailData{
		Email:          "org@example.com",
		PartnerOneName: "Ayşe",
		PartnerTwoName: "<Mehmet>",
		ShareURL:       "https://album.test/ayse-mehmet",
		Slug:           "ayse-mehmet",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ayşe & <Mehmet>: your photo album is ready", subject)
	assert.Contains(t, html, `href="https://album.test/ayse-mehmet"`)
	assert.Contains(t, html, "&lt;Mehmet&gt;")
	assert.Contains(t, text, "https://album.test/ayse-mehmet")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)
	_, _, _, err = r.Render("welcome", nil)
	require.Error(t, err)
}
