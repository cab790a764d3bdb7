// Package mail builds and delivers outbound email. Delivery is routed
// per send between a real SMTP transport and a log-only dev transport
// based on the stored email settings.
package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoRecipient is returned when a message has no To address.
var ErrNoRecipient = errors.New("mail message has no recipient")

// Message is a single outbound email. Attachments are paths to files
// on disk, read at build time.
type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []string
}

// Bytes renders the message as a MIME document ready for an SMTP DATA
// command. The HTML body and a plain text alternative are wrapped in a
// multipart/alternative section; attachments are appended base64
// encoded. When TextBody is empty it is derived from the HTML body.
func (m *Message) Bytes(from, fromName string) ([]byte, error) {
	if m.To == "" {
		return nil, ErrNoRecipient
	}

	text := m.TextBody
	if text == "" {
		text = StripHTML(m.HTMLBody)
	}

	var buf bytes.Buffer

	mixed := multipart.NewWriter(&buf)

	fromAddr := mail.Address{Name: fromName, Address: from}

	fmt.Fprintf(&buf, "From: %s\r\n", fromAddr.String())
	fmt.Fprintf(&buf, "To: %s\r\n", m.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixed.Boundary())

	var alt bytes.Buffer

	altWriter := multipart.NewWriter(&alt)

	textPart, err := altWriter.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating text part")
	}

	fmt.Fprintf(textPart, "%s\r\n", text)

	htmlPart, err := altWriter.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=utf-8"},
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating html part")
	}

	fmt.Fprintf(htmlPart, "%s\r\n", m.HTMLBody)

	if err := altWriter.Close(); err != nil {
		return nil, errors.Wrap(err, "closing alternative section")
	}

	altPart, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", altWriter.Boundary())},
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating alternative part")
	}

	if _, err := altPart.Write(alt.Bytes()); err != nil {
		return nil, errors.Wrap(err, "writing alternative part")
	}

	for _, path := range m.Attachments {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading attachment %s", path)
		}

		name := filepath.Base(path)

		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		part, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {fmt.Sprintf("%s; name=%q", contentType, name)},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", name)},
		})
		if err != nil {
			return nil, errors.Wrapf(err, "creating attachment part %s", name)
		}

		if err := writeBase64(part, data); err != nil {
			return nil, errors.Wrapf(err, "encoding attachment %s", name)
		}
	}

	if err := mixed.Close(); err != nil {
		return nil, errors.Wrap(err, "closing mime document")
	}

	return buf.Bytes(), nil
}

// writeBase64 encodes data with RFC 2045 line wrapping at 76 columns.
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)

	for len(encoded) > 0 {
		n := 76
		if n > len(encoded) {
			n = len(encoded)
		}

		if _, err := fmt.Fprintf(w, "%s\r\n", encoded[:n]); err != nil {
			return err
		}

		encoded = encoded[n:]
	}

	return nil
}

var (
	breakTagPattern = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>|</tr>|</h[1-6]>`)
	anyTagPattern   = regexp.MustCompile(`<[^>]*>`)
	blankRunPattern = regexp.MustCompile(`\n{3,}`)
)

// StripHTML derives a plain text rendition from an HTML body: block
// closers become newlines, remaining tags are dropped and entities
// decoded.
func StripHTML(s string) string {
	s = breakTagPattern.ReplaceAllString(s, "\n")
	s = anyTagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = blankRunPattern.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
