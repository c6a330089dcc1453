package report

import (
	"encoding/csv"
	"io"
	"regexp"
	"strings"

	"github.com/mbolis/quick-forms/model"
)

const (
	noAnswer   = "No answer"
	anonymous  = "Anonymous"
	timeLayout = "2006-01-02 15:04:05"
)

var reSpace = regexp.MustCompile(`\s+`)

// ExportFilename derives the CSV download name from the form title.
func ExportFilename(title string) string {
	return reSpace.ReplaceAllString(title, "_") + "_responses.csv"
}

// Detail is one response flattened against the form's question order, with
// a fixed placeholder where a question went unanswered. Answers left behind
// by a form edit (old question ids) simply never match.
type Detail struct {
	ResponseID  string   `json:"response_id"`
	Email       string   `json:"email"`
	SubmittedAt string   `json:"submitted_at"`
	Values      []string `json:"values"`
}

func Details(form model.Form, responses []model.Response) []Detail {
	details := make([]Detail, 0, len(responses))
	for _, r := range responses {
		d := Detail{
			ResponseID:  r.ID,
			Email:       emailOrAnonymous(r.Email),
			SubmittedAt: r.SubmittedAt.Format(timeLayout),
			Values:      make([]string, 0, len(form.Questions)),
		}
		for _, q := range form.Questions {
			d.Values = append(d.Values, cell(r, q.ID))
		}
		details = append(details, d)
	}
	return details
}

// WriteCSV streams all responses as delimited text: a header row with the
// submission time, email and each question's text in form order, then one
// row per response. Quote escaping follows RFC 4180 (internal quotes
// doubled, field quoted).
func WriteCSV(w io.Writer, form model.Form, responses []model.Response) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, 2+len(form.Questions))
	header = append(header, "Submission Time", "Email")
	for _, q := range form.Questions {
		header = append(header, q.Text)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range responses {
		row := make([]string, 0, len(header))
		row = append(row, r.SubmittedAt.Format(timeLayout), emailOrAnonymous(r.Email))
		for _, q := range form.Questions {
			row = append(row, cell(r, q.ID))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func cell(r model.Response, questionID string) string {
	a, ok := findAnswer(r, questionID)
	switch {
	case !ok:
		return noAnswer
	case a.Text != "":
		return a.Text
	case len(a.Options) > 0:
		return strings.Join(a.Options, ", ")
	}
	return noAnswer
}

func emailOrAnonymous(email string) string {
	if email == "" {
		return anonymous
	}
	return email
}
