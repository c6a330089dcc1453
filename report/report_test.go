package report

import (
	"strings"
	"testing"
	"time"

	"github.com/mbolis/quick-forms/model"
)

func choiceForm() model.Form {
	return model.Form{
		Title: "Lunch poll",
		Questions: []model.Question{
			{ID: "q1", Text: "Favorite?", Type: model.TypeMultipleChoice, Options: []string{"A", "B"}, OrderNumber: 1},
			{ID: "q2", Text: "Comments", Type: model.TypeText, OrderNumber: 2},
		},
	}
}

func pick(option string) model.Response {
	return model.Response{Answers: []model.Answer{{QuestionID: "q1", Text: option}}}
}

func TestSummarizePercentages(t *testing.T) {
	form := choiceForm()
	responses := []model.Response{pick("A"), pick("A"), pick("A"), pick("B")}

	summary := Summarize(form, responses)

	if summary.Total != 4 {
		t.Fatalf("total = %d, want 4", summary.Total)
	}
	a := summary.Questions[0].Options[0]
	if a.Option != "A" || a.Count != 3 || a.Percentage != 75 {
		t.Errorf("option A = %+v, want count 3 at 75%%", a)
	}
	b := summary.Questions[0].Options[1]
	if b.Count != 1 || b.Percentage != 25 {
		t.Errorf("option B = %+v, want count 1 at 25%%", b)
	}
}

func TestSummarizeCheckboxCountsOptionSets(t *testing.T) {
	form := model.Form{Questions: []model.Question{
		{ID: "q1", Text: "Topics", Type: model.TypeCheckbox, Options: []string{"Go", "SQL"}},
	}}
	responses := []model.Response{
		{Answers: []model.Answer{{QuestionID: "q1", Options: []string{"Go", "SQL"}}}},
		{Answers: []model.Answer{{QuestionID: "q1", Options: []string{"Go"}}}},
	}

	summary := Summarize(form, responses)

	got := summary.Questions[0].Options
	if got[0].Count != 2 || got[0].Percentage != 100 {
		t.Errorf("Go = %+v, want counted in both answer sets", got[0])
	}
	if got[1].Count != 1 || got[1].Percentage != 50 {
		t.Errorf("SQL = %+v, want 1 at 50%%", got[1])
	}
}

func TestSummarizeNoResponses(t *testing.T) {
	summary := Summarize(choiceForm(), nil)

	if summary.Total != 0 {
		t.Fatalf("total = %d, want 0", summary.Total)
	}
	for _, opt := range summary.Questions[0].Options {
		if opt.Count != 0 || opt.Percentage != 0 {
			t.Errorf("option %q = %+v, want all zeroes", opt.Option, opt)
		}
	}
}

func TestSummarizeFreeTextCountsNonEmpty(t *testing.T) {
	form := choiceForm()
	responses := []model.Response{
		{Answers: []model.Answer{{QuestionID: "q2", Text: "great"}}},
		{Answers: []model.Answer{{QuestionID: "q2", Text: ""}}},
		{Answers: []model.Answer{{QuestionID: "q1", Text: "A"}}},
	}

	summary := Summarize(form, responses)

	if got := summary.Questions[1].Answered; got != 1 {
		t.Errorf("answered = %d, want only the non-empty text counted", got)
	}
}

func exportForm() (model.Form, []model.Response) {
	form := model.Form{
		Title: "Name survey",
		Questions: []model.Question{
			{ID: "q1", Text: "Your name", Type: model.TypeText, OrderNumber: 1},
			{ID: "q2", Text: "Topics", Type: model.TypeCheckbox, Options: []string{"Go", "SQL"}, OrderNumber: 2},
		},
	}
	responses := []model.Response{
		{
			ID:          "r1",
			Email:       "carol@example.com",
			SubmittedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
			Answers: []model.Answer{
				{QuestionID: "q1", Text: `O'Brien"s`},
				{QuestionID: "q2", Options: []string{"Go", "SQL"}},
			},
		},
		{
			ID:          "r2",
			SubmittedAt: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
			Answers:     []model.Answer{{QuestionID: "q2", Options: []string{"Go"}}},
		},
	}
	return form, responses
}

func TestWriteCSV(t *testing.T) {
	form, responses := exportForm()

	var buf strings.Builder
	err := WriteCSV(&buf, form, responses)
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2 rows:\n%s", len(lines), buf.String())
	}

	if lines[0] != "Submission Time,Email,Your name,Topics" {
		t.Errorf("header = %q", lines[0])
	}
	// internal quotes doubled, whole field quoted
	if !strings.Contains(lines[1], `"O'Brien""s"`) {
		t.Errorf("row = %q, want quote-escaped name", lines[1])
	}
	if !strings.Contains(lines[1], `"Go, SQL"`) {
		t.Errorf("row = %q, want options joined", lines[1])
	}
	if !strings.Contains(lines[2], "Anonymous") {
		t.Errorf("row = %q, want Anonymous for missing email", lines[2])
	}
	if !strings.Contains(lines[2], "No answer") {
		t.Errorf("row = %q, want No answer placeholder", lines[2])
	}
}

func TestDetails(t *testing.T) {
	form, responses := exportForm()

	details := Details(form, responses)
	if len(details) != 2 {
		t.Fatalf("details = %d, want 2", len(details))
	}

	if details[0].Email != "carol@example.com" {
		t.Errorf("email = %q", details[0].Email)
	}
	if details[0].Values[1] != "Go, SQL" {
		t.Errorf("values = %v, want joined options", details[0].Values)
	}
	if details[1].Email != "Anonymous" {
		t.Errorf("email = %q, want Anonymous", details[1].Email)
	}
	if details[1].Values[0] != "No answer" {
		t.Errorf("values = %v, want No answer for unanswered question", details[1].Values)
	}
}

func TestExportFilename(t *testing.T) {
	if got := ExportFilename("Customer feedback  2024"); got != "Customer_feedback_2024_responses.csv" {
		t.Errorf("filename = %q", got)
	}
}
