package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingID is returned for a case without an identifier.
var ErrMissingID = errors.New("case id is required")

// Normalize trims the identifier, canonicalizes the status and checks both.
// It is applied to every case entering the store.
func (c *Case) Normalize() error {
	c.ID = strings.TrimSpace(c.ID)
	if c.ID == "" {
		return ErrMissingID
	}
	st, err := ParseStatus(string(c.Status))
	if err != nil {
		return fmt.Errorf("case %s: %w", c.ID, err)
	}
	c.Status = st
	return nil
}
