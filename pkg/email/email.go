package email

import (
	"errors"
	"net/mail"
	"strings"
)

// Message is one outbound email as handed to a transport.
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// Validate checks that the message can be handed to a provider.
func (m Message) Validate() error {
	if _, err := mail.ParseAddress(m.From); err != nil {
		return errors.New("invalid from address")
	}
	if _, err := mail.ParseAddress(m.To); err != nil {
		return errors.New("invalid to address")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("subject is required")
	}
	if m.Text == "" && m.HTML == "" {
		return errors.New("body is required")
	}
	return nil
}

// FormatAddress renders a display name and address as an RFC 5322 mailbox.
func FormatAddress(name, address string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return address
	}
	return (&mail.Address{Name: name, Address: address}).String()
}
