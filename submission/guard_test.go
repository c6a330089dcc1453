package submission

import (
	"context"
	"testing"

	"github.com/mbolis/quick-forms/model"
)

type fakeChecker struct {
	emails map[string]bool
	calls  int
}

func (f *fakeChecker) HasResponseWithEmail(_ context.Context, _, email string) (bool, error) {
	f.calls++
	return f.emails[email], nil
}

func TestGuardPolicy(t *testing.T) {
	tests := []struct {
		name          string
		allowMultiple bool
		hasMarker     bool
		email         string
		knownEmail    bool
		wantAllowed   bool
		wantStrength  Strength
		wantLookup    bool
	}{
		{
			name:          "multiple submissions always allowed",
			allowMultiple: true,
			hasMarker:     true,
			email:         "a@b.co",
			knownEmail:    true,
			wantAllowed:   true,
			wantStrength:  StrengthNone,
		},
		{
			name:         "marker rejects before backend",
			hasMarker:    true,
			email:        "a@b.co",
			wantAllowed:  false,
			wantStrength: StrengthAdvisory,
		},
		{
			name:         "known email rejected",
			email:        "a@b.co",
			knownEmail:   true,
			wantAllowed:  false,
			wantStrength: StrengthChecked,
			wantLookup:   true,
		},
		{
			name:         "new email allowed",
			email:        "a@b.co",
			wantAllowed:  true,
			wantStrength: StrengthChecked,
			wantLookup:   true,
		},
		{
			name:         "no marker no email allowed with no signal",
			wantAllowed:  true,
			wantStrength: StrengthNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &fakeChecker{emails: map[string]bool{}}
			if tt.knownEmail {
				checker.emails[tt.email] = true
			}

			form := model.Form{ID: "f1", AllowMultipleSubmissions: tt.allowMultiple}
			decision, err := NewGuard(checker).Check(context.Background(), form, tt.email, tt.hasMarker)
			if err != nil {
				t.Fatalf("Check: %v", err)
			}

			if decision.Allowed != tt.wantAllowed {
				t.Errorf("allowed = %v, want %v", decision.Allowed, tt.wantAllowed)
			}
			if decision.Strength != tt.wantStrength {
				t.Errorf("strength = %v, want %v", decision.Strength, tt.wantStrength)
			}
			if lookedUp := checker.calls > 0; lookedUp != tt.wantLookup {
				t.Errorf("backend lookup = %v, want %v", lookedUp, tt.wantLookup)
			}
		})
	}
}

func TestMarkerCookie(t *testing.T) {
	c := MarkerCookie("abc-123")

	if c.Name != "form_abc-123_submitted" {
		t.Errorf("name = %q", c.Name)
	}
	if c.Value != "true" {
		t.Errorf("value = %q", c.Value)
	}
	if c.Path != "/" {
		t.Errorf("path = %q, want site-wide", c.Path)
	}
	if c.MaxAge != 365*24*60*60 {
		t.Errorf("max-age = %d, want 1 year", c.MaxAge)
	}
}
