// Package submission holds the response intake flow: the duplicate guard
// policy and the collector that validates and persists one submission.
package submission

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mbolis/quick-forms/model"
)

// Strength qualifies a guard verdict so callers cannot mistake the browser
// marker for a security control.
type Strength int

const (
	// StrengthNone: no duplicate signal was available at all.
	StrengthNone Strength = iota
	// StrengthAdvisory: verdict based on the browser marker only. Trivially
	// bypassed by clearing cookies; never authoritative.
	StrengthAdvisory
	// StrengthChecked: verdict backed by a backend lookup on the
	// respondent's email.
	StrengthChecked
)

func (s Strength) String() string {
	switch s {
	case StrengthAdvisory:
		return "advisory"
	case StrengthChecked:
		return "checked"
	}
	return "none"
}

type Decision struct {
	Allowed  bool
	Strength Strength
}

// EmailChecker is the backend lookup the guard consults when the respondent
// supplied an email address.
type EmailChecker interface {
	HasResponseWithEmail(ctx context.Context, formID, email string) (bool, error)
}

type Guard struct {
	store EmailChecker
}

func NewGuard(store EmailChecker) *Guard {
	return &Guard{store}
}

// Check decides whether a new response may be recorded for the form.
// hasMarker is the browser-scoped "already submitted" cookie; it short-cuts
// the backend lookup but only ever yields an advisory rejection.
func (g *Guard) Check(ctx context.Context, form model.Form, email string, hasMarker bool) (Decision, error) {
	if form.AllowMultipleSubmissions {
		return Decision{Allowed: true, Strength: StrengthNone}, nil
	}

	if hasMarker {
		return Decision{Allowed: false, Strength: StrengthAdvisory}, nil
	}

	if email != "" {
		found, err := g.store.HasResponseWithEmail(ctx, form.ID, email)
		if err != nil {
			return Decision{}, err
		}
		return Decision{Allowed: !found, Strength: StrengthChecked}, nil
	}

	// No marker, no email: nothing left to check against.
	return Decision{Allowed: true, Strength: StrengthNone}, nil
}

const markerTTL = 365 * 24 * time.Hour

// MarkerName is the per-form cookie flagging that this browser already
// submitted.
func MarkerName(formID string) string {
	return fmt.Sprintf("form_%s_submitted", formID)
}

// MarkerCookie builds the 1-year, site-wide submission marker to set after
// an accepted submission when multiple submissions are disallowed.
func MarkerCookie(formID string) *http.Cookie {
	return &http.Cookie{
		Name:   MarkerName(formID),
		Value:  "true",
		Path:   "/",
		MaxAge: int(markerTTL / time.Second),
	}
}
