package model

import "time"

const (
	TypeText           = "text"
	TypeEmail          = "email"
	TypeNumber         = "number"
	TypeMultipleChoice = "multiple_choice"
	TypeCheckbox       = "checkbox"
)

// ChoiceType reports whether a question type carries a fixed option list.
func ChoiceType(t string) bool {
	return t == TypeMultipleChoice || t == TypeCheckbox
}

func ValidType(t string) bool {
	switch t {
	case TypeText, TypeEmail, TypeNumber, TypeMultipleChoice, TypeCheckbox:
		return true
	}
	return false
}

type Form struct {
	ID                       string     `json:"id,omitempty"`
	Title                    string     `json:"title"`
	Description              string     `json:"description"`
	CreatedAt                time.Time  `json:"created_at,omitempty"`
	OwnerID                  string     `json:"owner_id,omitempty"`
	IsPublic                 bool       `json:"is_public"`
	AllowMultipleSubmissions bool       `json:"allow_multiple_submissions"`
	Questions                []Question `json:"questions,omitempty"`

	// ResponseCount is only populated on owner-side listings.
	ResponseCount int `json:"response_count,omitempty"`
	// Submitted is set on the public view when the browser carries the
	// per-form submission marker. Advisory only.
	Submitted bool `json:"submitted,omitempty"`
}

type Question struct {
	ID          string   `json:"id,omitempty"`
	FormID      string   `json:"form_id,omitempty"`
	Text        string   `json:"text"`
	Type        string   `json:"type"`
	Options     []string `json:"options,omitempty"`
	Required    bool     `json:"required"`
	OrderNumber int      `json:"order_number"`
}

type Response struct {
	ID          string    `json:"id"`
	FormID      string    `json:"form_id,omitempty"`
	Email       string    `json:"email,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	IP          string    `json:"ip,omitempty"`
	Answers     []Answer  `json:"answers"`
}

type Answer struct {
	ID         string   `json:"id,omitempty"`
	QuestionID string   `json:"question_id"`
	Text       string   `json:"answer_text,omitempty"`
	Options    []string `json:"answer_options,omitempty"`
}

// Submission is the payload a respondent posts against a form.
type Submission struct {
	Email   string   `json:"email"`
	Answers []Answer `json:"answers"`
}
