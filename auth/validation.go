package auth

import (
	"strings"
)

// Credentials are what the user types on the login screen. Identifier is
// either an email address or a school id; the backend decides which.
type Credentials struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Validate trims the identifier and rejects empty fields before any request
// is made. The password is sent as typed.
func (c *Credentials) Validate() error {
	c.Identifier = strings.TrimSpace(c.Identifier)
	if c.Identifier == "" {
		return MissingIdentifierErr
	}
	if c.Password == "" {
		return MissingPasswordErr
	}
	return nil
}

// IsEmail reports whether the identifier looks like an email rather than a
// school id. Used only for logging.
func (c Credentials) IsEmail() bool {
	return strings.Contains(c.Identifier, "@")
}
