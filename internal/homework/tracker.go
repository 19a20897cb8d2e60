package homework

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Tracker remembers the last status that produced a notification.
//
// It is owned by a single poll loop and is not safe for concurrent use.
// State lives for the process lifetime only.
type Tracker struct {
	rules *validator.Validate

	last Status
	seen bool
}

func NewTracker() *Tracker {
	return &Tracker{rules: validator.New(validator.WithRequiredStructEnabled())}
}

// Diff returns the notification text for rec when its status differs from
// the last seen one, and records the new status. changed is false when the
// status repeats. On error the tracked status is left untouched.
func (t *Tracker) Diff(rec Record) (message string, changed bool, err error) {
	if err := t.check(rec); err != nil {
		return "", false, err
	}
	if t.seen && rec.Status == t.last {
		return "", false, nil
	}
	t.last = rec.Status
	t.seen = true
	return FormatMessage(rec.Name, rec.Status), true, nil
}

// LastStatus returns the tracked status, if any.
func (t *Tracker) LastStatus() (Status, bool) {
	return t.last, t.seen
}

// check maps validator failures onto the error taxonomy. Status problems
// are reported before a missing name.
func (t *Tracker) check(rec Record) error {
	err := t.rules.Struct(rec)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}

	var nameErr error
	for _, fe := range fields {
		switch fe.StructField() {
		case "Status":
			if fe.Tag() == "required" {
				return &MissingFieldError{Field: "status"}
			}
			return &UnknownStatusError{Status: string(rec.Status)}
		case "Name":
			nameErr = &MissingFieldError{Field: "homework_name"}
		}
	}
	if nameErr != nil {
		return nameErr
	}
	return err
}
