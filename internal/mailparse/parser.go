// Package mailparse decodes raw RFC 5322 messages into the handful of
// fields the ingestion pipeline cares about.
package mailparse

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Message holds the decoded fields of one inbound email. HTML and Text
// are the first text/html and text/plain parts found, empty when the
// message carries no such part.
type Message struct {
	Subject string
	Sender  string
	HTML    string
	Text    string
}

// Body returns the rendered article body: the HTML part when present,
// otherwise the plain-text part, otherwise the empty string. Ingestion
// never fails just because one representation is missing.
func (m *Message) Body() string {
	if m.HTML != "" {
		return m.HTML
	}
	return m.Text
}

// Parse decodes raw message bytes. Header decoding failures (unknown
// charsets, malformed encoded words) degrade to the raw header value;
// a message whose structure cannot be read at all is an error.
func Parse(raw []byte) (*Message, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("read message: %w", err)
	}

	msg := &Message{}

	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = subject
	} else {
		msg.Subject = mr.Header.Get("Subject")
	}

	if addrs, err := mr.Header.AddressList("From"); err == nil && len(addrs) > 0 {
		msg.Sender = addrs[0].Address
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read part: %w", err)
		}

		inline, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			// Attachments are not article content.
			continue
		}

		mediaType, _, err := inline.ContentType()
		if err != nil {
			continue
		}

		switch {
		case strings.EqualFold(mediaType, "text/html") && msg.HTML == "":
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("read html part: %w", err)
			}
			msg.HTML = string(body)
		case strings.EqualFold(mediaType, "text/plain") && msg.Text == "":
			body, err := io.ReadAll(part.Body)
			if err != nil {
				return nil, fmt.Errorf("read text part: %w", err)
			}
			msg.Text = string(body)
		}
	}

	return msg, nil
}
