package records

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// ErrInvalidContact is returned when a contact message fails validation.
var ErrInvalidContact = errors.New("invalid contact message")

// ContactMessage is the payload of the public contact form.
type ContactMessage struct {
	Name    string `json:"nome"`
	Email   string `json:"email"`
	Message string `json:"mensagem"`
}

// Validate checks that every field is present and the email parses.
func (c ContactMessage) Validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidContact)
	case strings.TrimSpace(c.Message) == "":
		return fmt.Errorf("%w: message is required", ErrInvalidContact)
	case strings.TrimSpace(c.Email) == "":
		return fmt.Errorf("%w: email is required", ErrInvalidContact)
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("%w: email: %v", ErrInvalidContact, err)
	}
	return nil
}
