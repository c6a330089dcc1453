package submission_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/store"
	"github.com/mbolis/quick-forms/submission"
	"github.com/mbolis/quick-forms/testutil"
)

func setup(t *testing.T, mutate func(*model.Form)) (*store.FormStore, *submission.Collector, model.Form) {
	t.Helper()

	db := testutil.OpenDB(t)
	testutil.CreateUser(t, db, "alice", "secret")
	s := store.New(db)

	form := model.Form{
		Title:    "Signup",
		IsPublic: true,
		Questions: []model.Question{
			{Text: "Your name", Type: model.TypeText, Required: true, OrderNumber: 1},
			{Text: "Topics", Type: model.TypeCheckbox, Options: []string{"Go", "SQL"}, OrderNumber: 2},
		},
	}
	if mutate != nil {
		mutate(&form)
	}

	id, err := s.CreateForm(context.Background(), "alice", form)
	if err != nil {
		t.Fatalf("CreateForm: %v", err)
	}
	form, err = s.FormWithQuestions(context.Background(), id)
	if err != nil {
		t.Fatalf("FormWithQuestions: %v", err)
	}

	return s, submission.NewCollector(s, testutil.StaticIP("203.0.113.7")), form
}

func answersFor(form model.Form) []model.Answer {
	return []model.Answer{
		{QuestionID: form.Questions[0].ID, Text: "Carol"},
		{QuestionID: form.Questions[1].ID, Options: []string{"Go"}},
	}
}

func TestSubmitPersistsResponse(t *testing.T) {
	s, c, form := setup(t, nil)

	result, err := c.Submit(context.Background(), form.ID, model.Submission{
		Email:   "carol@example.com",
		Answers: answersFor(form),
	}, false)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.ResponseID == "" {
		t.Error("missing response id")
	}
	if !result.SetMarker {
		t.Error("SetMarker = false, want marker for single-submission form")
	}

	responses, _ := s.ResponsesWithAnswers(context.Background(), form.ID)
	if len(responses) != 1 {
		t.Fatalf("responses = %d, want 1", len(responses))
	}
	if responses[0].IP != "203.0.113.7" {
		t.Errorf("ip = %q, want resolved address", responses[0].IP)
	}
}

func TestSubmitDuplicateEmailRejected(t *testing.T) {
	_, c, form := setup(t, nil)

	sub := model.Submission{Email: "carol@example.com", Answers: answersFor(form)}
	if _, err := c.Submit(context.Background(), form.ID, sub, false); err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	_, err := c.Submit(context.Background(), form.ID, sub, false)
	if !errors.Is(err, model.ErrDuplicate) {
		t.Errorf("second Submit = %v, want ErrDuplicate", err)
	}
}

func TestSubmitMultipleAllowed(t *testing.T) {
	s, c, form := setup(t, func(f *model.Form) {
		f.AllowMultipleSubmissions = true
	})

	sub := model.Submission{Email: "carol@example.com", Answers: answersFor(form)}
	for i := 0; i < 3; i++ {
		result, err := c.Submit(context.Background(), form.ID, sub, false)
		if err != nil {
			t.Fatalf("Submit #%d: %v", i+1, err)
		}
		if result.SetMarker {
			t.Error("SetMarker = true on a multiple-submission form")
		}
	}

	responses, _ := s.ResponsesWithAnswers(context.Background(), form.ID)
	if len(responses) != 3 {
		t.Errorf("responses = %d, want all 3 kept", len(responses))
	}
}

func TestSubmitMarkerFastPath(t *testing.T) {
	_, c, form := setup(t, nil)

	_, err := c.Submit(context.Background(), form.ID, model.Submission{
		Answers: answersFor(form),
	}, true)
	if !errors.Is(err, model.ErrDuplicate) {
		t.Errorf("Submit with marker = %v, want ErrDuplicate", err)
	}
}

func TestSubmitMissingRequiredAnswer(t *testing.T) {
	s, c, form := setup(t, nil)

	tests := []struct {
		name    string
		answers []model.Answer
	}{
		{"answer omitted", []model.Answer{{QuestionID: form.Questions[1].ID, Options: []string{"Go"}}}},
		{"answer blank", []model.Answer{{QuestionID: form.Questions[0].ID, Text: ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Submit(context.Background(), form.ID, model.Submission{Answers: tt.answers}, false)

			var verr *model.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Submit = %v, want ValidationError", err)
			}
			found := false
			for _, p := range verr.Problems {
				if p == `question "Your name" requires an answer` {
					found = true
				}
			}
			if !found {
				t.Errorf("problems = %v, want the offending question named", verr.Problems)
			}

			responses, _ := s.ResponsesWithAnswers(context.Background(), form.ID)
			if len(responses) != 0 {
				t.Errorf("responses = %d, want nothing persisted", len(responses))
			}
		})
	}
}

func TestSubmitMalformedEmail(t *testing.T) {
	_, c, form := setup(t, nil)

	_, err := c.Submit(context.Background(), form.ID, model.Submission{
		Email:   "not an email",
		Answers: answersFor(form),
	}, false)
	if !model.IsValidation(err) {
		t.Errorf("Submit = %v, want ValidationError", err)
	}
}

func TestSubmitUnknownQuestionRejected(t *testing.T) {
	_, c, form := setup(t, nil)

	answers := append(answersFor(form), model.Answer{QuestionID: "not-a-question", Text: "x"})
	_, err := c.Submit(context.Background(), form.ID, model.Submission{Answers: answers}, false)
	if !model.IsValidation(err) {
		t.Errorf("Submit = %v, want ValidationError", err)
	}
}

func TestSubmitIPLookupFailureNotFatal(t *testing.T) {
	s, _, form := setup(t, nil)
	c := submission.NewCollector(s, testutil.DownIP{})

	_, err := c.Submit(context.Background(), form.ID, model.Submission{
		Answers: answersFor(form),
	}, false)
	if err != nil {
		t.Fatalf("Submit with dead lookup: %v", err)
	}

	responses, _ := s.ResponsesWithAnswers(context.Background(), form.ID)
	if len(responses) != 1 {
		t.Fatalf("responses = %d, want 1", len(responses))
	}
	if responses[0].IP != "" {
		t.Errorf("ip = %q, want empty on degraded lookup", responses[0].IP)
	}
}

func TestSubmitPrivateFormNotFound(t *testing.T) {
	_, c, form := setup(t, func(f *model.Form) {
		f.IsPublic = false
	})

	_, err := c.Submit(context.Background(), form.ID, model.Submission{Answers: answersFor(form)}, false)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Submit to private form = %v, want ErrNotFound", err)
	}
}

func TestSubmitMissingFormNotFound(t *testing.T) {
	_, c, _ := setup(t, nil)

	_, err := c.Submit(context.Background(), "69f60ca5-05ff-4678-8731-05d87a176c99", model.Submission{}, false)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Submit to missing form = %v, want ErrNotFound", err)
	}
}
