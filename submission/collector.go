package submission

import (
	"context"
	"fmt"
	"regexp"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/model"
)

var reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Store is the persistence surface the collector needs.
type Store interface {
	EmailChecker
	FormWithQuestions(ctx context.Context, id string) (model.Form, error)
	InsertResponse(ctx context.Context, resp model.Response) (id string, err error)
}

// IPLookup resolves the respondent's network address. Failures are
// non-fatal: the response is recorded without an address.
type IPLookup interface {
	PublicIP(ctx context.Context) (string, error)
}

type Collector struct {
	store  Store
	guard  *Guard
	lookup IPLookup
}

func NewCollector(store Store, lookup IPLookup) *Collector {
	return &Collector{
		store:  store,
		guard:  NewGuard(store),
		lookup: lookup,
	}
}

// Result reports an accepted submission.
type Result struct {
	ResponseID string
	// SetMarker tells the caller to plant the browser marker cookie.
	SetMarker bool
}

// Submit validates one submission against the form's current definition and
// persists it. hasMarker carries the browser's "already submitted" cookie
// state for the duplicate guard.
//
// Failure modes: model.ErrNotFound for a missing or private form,
// *model.ValidationError for bad input, model.ErrDuplicate when the guard
// rejects, anything else is a storage failure.
func (c *Collector) Submit(ctx context.Context, formID string, sub model.Submission, hasMarker bool) (Result, error) {
	form, err := c.store.FormWithQuestions(ctx, formID)
	if err != nil {
		return Result{}, err
	}
	if !form.IsPublic {
		return Result{}, model.ErrNotFound
	}

	if err := validate(form, sub); err != nil {
		return Result{}, err
	}

	decision, err := c.guard.Check(ctx, form, sub.Email, hasMarker)
	if err != nil {
		return Result{}, errors.Wrap(err, "duplicate check")
	}
	if !decision.Allowed {
		log.Debugf("submit %s: rejected as duplicate (%s)", formID, decision.Strength)
		return Result{}, model.ErrDuplicate
	}

	// Best-effort address lookup; a null address is fine.
	ip, err := c.lookup.PublicIP(ctx)
	if err != nil {
		log.Warnf("submit %s: ip lookup failed: %s", formID, err)
		ip = ""
	}

	id, err := c.store.InsertResponse(ctx, model.Response{
		FormID:  formID,
		Email:   sub.Email,
		IP:      ip,
		Answers: sub.Answers,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		ResponseID: id,
		SetMarker:  !form.AllowMultipleSubmissions,
	}, nil
}

// validate checks the submission against the form definition: email syntax,
// every required question answered, and no answers pointed at questions
// outside this form. All violations are reported together.
func validate(form model.Form, sub model.Submission) error {
	var verr *multierror.Error

	if sub.Email != "" && !reEmail.MatchString(sub.Email) {
		verr = multierror.Append(verr, fmt.Errorf("invalid email address %q", sub.Email))
	}

	byQuestion := make(map[string]model.Answer, len(sub.Answers))
	for _, a := range sub.Answers {
		byQuestion[a.QuestionID] = a
	}

	known := make(map[string]bool, len(form.Questions))
	for _, q := range form.Questions {
		known[q.ID] = true

		if !q.Required {
			continue
		}
		a, ok := byQuestion[q.ID]
		if !ok || answerEmpty(a) {
			verr = multierror.Append(verr, fmt.Errorf("question %q requires an answer", q.Text))
		}
	}

	for _, a := range sub.Answers {
		if !known[a.QuestionID] {
			verr = multierror.Append(verr, fmt.Errorf("answer references unknown question %s", a.QuestionID))
		}
	}

	if verr == nil {
		return nil
	}

	problems := make([]string, len(verr.Errors))
	for i, e := range verr.Errors {
		problems[i] = e.Error()
	}
	return &model.ValidationError{Problems: problems}
}

func answerEmpty(a model.Answer) bool {
	return a.Text == "" && len(a.Options) == 0
}
