package store

import (
	"fmt"
	"strings"

	"clubdash/models"
	"clubdash/pkg/club"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func validateMember(m *models.Member) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return invalid("member name is required")
	}
	if !m.Status.Valid() {
		return invalid("member status %q", m.Status)
	}
	return nil
}

func validateEvent(e *models.Event) error {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return invalid("event title is required")
	}
	if e.Date.IsZero() {
		return invalid("event date is required")
	}
	e.Date = club.Day(e.Date)
	return nil
}

func validateTransaction(t *models.Transaction) error {
	t.Description = strings.TrimSpace(t.Description)
	if t.Description == "" {
		return invalid("transaction description is required")
	}
	if t.Date.IsZero() {
		return invalid("transaction date is required")
	}
	if err := club.CheckSign(*t); err != nil {
		return invalid("%v", err)
	}
	t.Date = club.Day(t.Date)
	return nil
}
