// Package report is the read side: it folds a form's questions and its
// collected responses into per-question tallies, per-response detail rows
// and a CSV export.
package report

import (
	"math"

	"github.com/mbolis/quick-forms/model"
)

type Summary struct {
	Total     int               `json:"total"`
	Questions []QuestionSummary `json:"questions"`
}

type QuestionSummary struct {
	Question model.Question `json:"question"`
	// Options is populated for multiple_choice and checkbox questions.
	Options []OptionTally `json:"options,omitempty"`
	// Answered counts non-empty answers for free-input questions.
	Answered int `json:"answered"`
}

type OptionTally struct {
	Option     string `json:"option"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// Summarize tallies responses per question in form order. Percentages are
// rounded to integers over the total response count; a form with no
// responses reports zeroes throughout.
func Summarize(form model.Form, responses []model.Response) Summary {
	summary := Summary{
		Total:     len(responses),
		Questions: make([]QuestionSummary, 0, len(form.Questions)),
	}

	for _, q := range form.Questions {
		qs := QuestionSummary{Question: q}

		if model.ChoiceType(q.Type) {
			for _, opt := range q.Options {
				count := 0
				for _, r := range responses {
					if picked(r, q.ID, opt) {
						count++
					}
				}
				pct := 0
				if summary.Total > 0 {
					pct = int(math.Round(float64(count) / float64(summary.Total) * 100))
				}
				qs.Options = append(qs.Options, OptionTally{Option: opt, Count: count, Percentage: pct})
			}
		} else {
			for _, r := range responses {
				if a, ok := findAnswer(r, q.ID); ok && !empty(a) {
					qs.Answered++
				}
			}
		}

		summary.Questions = append(summary.Questions, qs)
	}
	return summary
}

func picked(r model.Response, questionID, option string) bool {
	a, ok := findAnswer(r, questionID)
	if !ok {
		return false
	}
	if a.Text == option {
		return true
	}
	for _, o := range a.Options {
		if o == option {
			return true
		}
	}
	return false
}

func findAnswer(r model.Response, questionID string) (model.Answer, bool) {
	for _, a := range r.Answers {
		if a.QuestionID == questionID {
			return a, true
		}
	}
	return model.Answer{}, false
}

func empty(a model.Answer) bool {
	return a.Text == "" && len(a.Options) == 0
}
