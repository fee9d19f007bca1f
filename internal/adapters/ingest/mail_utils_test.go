package ingest

import (
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseMail(t *testing.T, raw string) *mail.Message {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	require.NoError(t, err)
	return msg
}

func TestMessageFromMailPlainText(t *testing.T) {
	raw := "From: billing@netflix.com\r\n" +
		"To: user@inbox.example\r\n" +
		"Subject: Your Netflix subscription has been renewed\r\n" +
		"Date: Fri, 10 Jan 2025 08:00:00 +0000\r\n" +
		"Message-Id: <abc123@netflix.com>\r\n" +
		"\r\n" +
		"Your subscription has been renewed for $15.99/month.\r\n"

	msg, err := MessageFromMail(parseMail(t, raw), "", time.Now())
	require.NoError(t, err)

	assert.Equal(t, "billing@netflix.com", msg.From)
	assert.Equal(t, "user@inbox.example", msg.To)
	assert.Equal(t, "Your Netflix subscription has been renewed", msg.Subject)
	assert.Contains(t, msg.BodyText, "$15.99/month")
	assert.Empty(t, msg.BodyHTML)
	assert.Equal(t, time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC), msg.ReceivedAt.UTC())
	assert.Equal(t, "<abc123@netflix.com>", msg.Headers["Message-Id"])
}

func TestMessageFromMailHTMLOnly(t *testing.T) {
	raw := "From: trial@acmeapp.io\r\n" +
		"Subject: Trial ending\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><body><p>Your trial ends on March 1, 2025.</p></body></html>\r\n"

	msg, err := MessageFromMail(parseMail(t, raw), "user@inbox.example", time.Now())
	require.NoError(t, err)

	assert.Empty(t, msg.BodyText)
	assert.Contains(t, msg.BodyHTML, "<p>Your trial ends on March 1, 2025.</p>")
	assert.Equal(t, "user@inbox.example", msg.To)
}

func TestMessageFromMailMultipart(t *testing.T) {
	raw := "From: billing@spotify.com\r\n" +
		"Subject: Payment received\r\n" +
		"Content-Type: multipart/alternative; boundary=\"sep\"\r\n" +
		"\r\n" +
		"--sep\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Thank you for subscribing. Your payment was received.\r\n" +
		"--sep\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>Thank you for subscribing.</p>\r\n" +
		"--sep--\r\n"

	msg, err := MessageFromMail(parseMail(t, raw), "", time.Now())
	require.NoError(t, err)

	assert.Contains(t, msg.BodyText, "Thank you for subscribing")
	assert.Contains(t, msg.BodyHTML, "<p>Thank you for subscribing.</p>")
}

func TestMessageFromMailQuotedPrintable(t *testing.T) {
	raw := "From: billing@netflix.com\r\n" +
		"Subject: Receipt\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"Renewed for =2415.99 per month.\r\n"

	msg, err := MessageFromMail(parseMail(t, raw), "", time.Now())
	require.NoError(t, err)

	assert.Contains(t, msg.BodyText, "$15.99")
}

func TestMessageFromMailEncodedSubject(t *testing.T) {
	raw := "From: billing@netflix.com\r\n" +
		"Subject: =?UTF-8?Q?Abonnement_verl=C3=A4ngert?=\r\n" +
		"\r\n" +
		"Your subscription has been renewed.\r\n"

	msg, err := MessageFromMail(parseMail(t, raw), "", time.Now())
	require.NoError(t, err)

	assert.Equal(t, "Abonnement verlängert", msg.Subject)
}

func TestMessageFromMailFallbackDate(t *testing.T) {
	raw := "From: billing@netflix.com\r\n" +
		"Subject: Receipt\r\n" +
		"\r\n" +
		"Your subscription has been renewed.\r\n"

	fallback := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msg, err := MessageFromMail(parseMail(t, raw), "", fallback)
	require.NoError(t, err)

	assert.Equal(t, fallback, msg.ReceivedAt)
}
