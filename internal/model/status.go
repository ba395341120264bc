package model

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the workflow state of a case.
type Status string

const (
	StatusAssigned  Status = "assigned"
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
)

// ErrInvalidStatus is returned for anything outside the three workflow states.
var ErrInvalidStatus = errors.New("invalid status")

// Statuses returns the workflow states in list tab order.
func Statuses() []Status {
	return []Status{StatusAssigned, StatusDraft, StatusSubmitted}
}

// ParseStatus accepts a status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusAssigned, StatusDraft, StatusSubmitted:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Valid reports whether s is one of the workflow states.
func (s Status) Valid() bool {
	switch s {
	case StatusAssigned, StatusDraft, StatusSubmitted:
		return true
	}
	return false
}

// Label is the title used by the list tabs.
func (s Status) Label() string {
	switch s {
	case StatusAssigned:
		return "Assigned"
	case StatusDraft:
		return "Drafts"
	case StatusSubmitted:
		return "Submitted"
	}
	return string(s)
}
