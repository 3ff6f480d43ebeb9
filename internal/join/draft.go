// Package join handles project proposals: the form draft, its validation, and
// submission to the third-party form endpoint.
package join

import (
	"errors"
	"net/url"
	"strings"
)

// Mode selects how the join section collects proposals.
type Mode string

const (
	// ModeForm posts proposals to the configured form endpoint.
	ModeForm Mode = "form"
	// ModeDiscussion links to the public discussion board instead.
	ModeDiscussion Mode = "discussion"
)

// ParseMode reads a mode flag, defaulting to discussion.
func ParseMode(v string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(v))) {
	case ModeForm:
		return ModeForm, nil
	case ModeDiscussion, "":
		return ModeDiscussion, nil
	default:
		return "", errors.New("join: unknown mode " + v)
	}
}

// Required lists the field ids that must be present before submitting,
// regardless of the field schema's own flags.
var Required = []string{"name", "email", "title"}

// Draft holds form input keyed by field id.
type Draft map[string]string

// DraftFromForm collects the values for fieldIDs from submitted form values.
// The required ids and "description" are always collected.
func DraftFromForm(form url.Values, fieldIDs []string) Draft {
	d := Draft{}
	ids := append(append([]string{}, Required...), "description")
	ids = append(ids, fieldIDs...)
	for _, id := range ids {
		if _, ok := d[id]; ok {
			continue
		}
		d[id] = form.Get(id)
	}
	return d
}

// FieldErrors maps a field id to a message.
type FieldErrors map[string]string

// Validate reports required fields that are empty after trimming.
func Validate(d Draft) FieldErrors {
	errs := FieldErrors{}
	for _, id := range Required {
		if strings.TrimSpace(d[id]) == "" {
			errs[id] = "This field is required"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Proposal builds the endpoint payload from the draft. Description defaults to "".
func (d Draft) Proposal() Proposal {
	return Proposal{
		Name:        strings.TrimSpace(d["name"]),
		Email:       strings.TrimSpace(d["email"]),
		Title:       strings.TrimSpace(d["title"]),
		Description: strings.TrimSpace(d["description"]),
	}
}

// Notification is the user-visible message after a submission attempt.
type Notification struct {
	Tone    string
	Title   string
	Message string
}

// FailureNotification describes err for the visitor: the endpoint's own message
// when it rejected the proposal, a retry hint otherwise.
func FailureNotification(err error) Notification {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return Notification{Tone: "error", Title: "Submission failed", Message: rejected.Message}
	}
	return Notification{Tone: "error", Title: "Submission failed", Message: "Please try again"}
}

// MissingFieldsNotification is shown when required fields are empty.
func MissingFieldsNotification() Notification {
	return Notification{Tone: "error", Title: "Missing information", Message: "Please fill in your name, email, and project title."}
}
