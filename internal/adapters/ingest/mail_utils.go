package ingest

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"time"

	"github.com/ronnydonkey/subtracker/internal/core"
)

// parsedBody holds the text and HTML parts pulled out of a MIME message.
type parsedBody struct {
	text string
	html string
}

// MessageFromMail converts a parsed RFC 5322 message into the engine's
// input shape. ReceivedAt comes from the Date header when parseable,
// otherwise from the fallback.
func MessageFromMail(msg *mail.Message, recipient string, fallback time.Time) (*core.EmailMessage, error) {
	body := extractBody(msg)

	receivedAt := fallback
	if date, err := msg.Header.Date(); err == nil {
		receivedAt = date
	}

	headers := make(map[string]string)
	for _, key := range []string{"Message-Id", "Date", "Reply-To", "List-Unsubscribe"} {
		if v := msg.Header.Get(key); v != "" {
			headers[key] = v
		}
	}

	to := recipient
	if to == "" {
		to = msg.Header.Get("To")
	}

	return core.NewEmailMessage(
		msg.Header.Get("From"),
		to,
		decodeHeader(msg.Header.Get("Subject")),
		body.text,
		body.html,
		receivedAt,
		headers,
	)
}

// extractBody walks the message, collecting text/plain and text/html parts.
// Parse trouble degrades to treating the body as plain text; the engine's
// extraction heuristics tolerate markup noise better than a dropped
// message.
func extractBody(msg *mail.Message) parsedBody {
	contentType := msg.Header.Get("Content-Type")
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		raw := readAll(decodeTransferEncoding(msg.Body, msg.Header.Get("Content-Transfer-Encoding")))
		if strings.Contains(strings.ToLower(mediaType), "html") {
			return parsedBody{html: raw}
		}
		return parsedBody{text: raw}
	}

	boundary, ok := params["boundary"]
	if !ok {
		return parsedBody{text: readAll(msg.Body)}
	}

	var body parsedBody
	mr := multipart.NewReader(msg.Body, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		partType := strings.ToLower(part.Header.Get("Content-Type"))
		reader := decodeTransferEncoding(part, part.Header.Get("Content-Transfer-Encoding"))
		switch {
		case strings.Contains(partType, "text/plain"):
			body.text += readAll(reader) + "\n"
		case strings.Contains(partType, "text/html"):
			body.html += readAll(reader) + "\n"
		}
		// Nested multiparts and attachments are skipped; subscription
		// evidence lives in the text parts.
	}

	return parsedBody{
		text: strings.TrimSpace(body.text),
		html: strings.TrimSpace(body.html),
	}
}

// decodeTransferEncoding unwraps quoted-printable bodies; anything else is
// passed through untouched.
func decodeTransferEncoding(r io.Reader, encoding string) io.Reader {
	if strings.EqualFold(strings.TrimSpace(encoding), "quoted-printable") {
		return quotedprintable.NewReader(r)
	}
	return r
}

// decodeHeader decodes RFC 2047 encoded words in a header value, falling
// back to the raw value on failure.
func decodeHeader(value string) string {
	decoder := mime.WordDecoder{}
	decoded, err := decoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

func readAll(r io.Reader) string {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return buf.String()
	}
	return buf.String()
}
