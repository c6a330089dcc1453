package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/quick-forms/model"
)

// HasResponseWithEmail reports whether the form already collected a response
// from the given email address.
func (s *FormStore) HasResponseWithEmail(ctx context.Context, formID, email string) (bool, error) {
	var found bool
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM response
		WHERE	form_id = ?
			AND respondent_email = ?
		LIMIT 1`,
		formID,
		email,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "check existing response")
	}
	return found, nil
}

// InsertResponse persists one response row plus all its answers in a single
// transaction, so a failed answer insert never leaves a dangling response.
func (s *FormStore) InsertResponse(ctx context.Context, resp model.Response) (id string, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	id = newID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO response (id, form_id, respondent_email, submitted_at, respondent_ip)
		VALUES (?, ?, ?, ?, ?)`,
		id,
		resp.FormID,
		nullable(resp.Email),
		time.Now(),
		nullable(resp.IP),
	)
	if err != nil {
		return "", errors.Wrap(err, "insert response")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO answer (id, response_id, question_id, answer_text, answer_options)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", errors.Wrap(err, "insert answers: prepare")
	}
	defer stmt.Close()

	for _, a := range resp.Answers {
		opts, err := marshalOptions(a.Options)
		if err != nil {
			return "", err
		}
		_, err = stmt.ExecContext(ctx, newID(), id, a.QuestionID, nullable(a.Text), opts)
		if err != nil {
			return "", errors.Wrap(err, "insert answers")
		}
	}

	err = tx.Commit()
	if err != nil {
		return "", errors.Wrap(err, "commit response")
	}
	return id, nil
}

// ResponsesWithAnswers loads all of a form's responses, newest first, each
// with its answer rows.
func (s *FormStore) ResponsesWithAnswers(ctx context.Context, formID string) ([]model.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			r.id, r.form_id, r.respondent_email, r.submitted_at, r.respondent_ip,
			a.id, a.question_id, a.answer_text, a.answer_options
		FROM response r
		LEFT OUTER JOIN answer a ON (r.id = a.response_id)
		WHERE r.form_id = ?
		ORDER BY r.submitted_at DESC, r.id`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get responses")
	}
	defer rows.Close()

	responses := []model.Response{}
	for rows.Next() {
		var (
			r           model.Response
			email, ip   sql.NullString
			answerID    sql.NullString
			questionID  sql.NullString
			answerText  sql.NullString
			answerOptsS sql.NullString
		)
		err = rows.Scan(
			&r.ID, &r.FormID, &email, &r.SubmittedAt, &ip,
			&answerID, &questionID, &answerText, &answerOptsS,
		)
		if err != nil {
			return nil, errors.Wrap(err, "get responses: scan")
		}
		r.Email = email.String
		r.IP = ip.String

		lastIdx := len(responses) - 1
		if lastIdx < 0 || responses[lastIdx].ID != r.ID {
			r.Answers = []model.Answer{}
			responses = append(responses, r)
			lastIdx++
		}

		if answerID.Valid {
			a := model.Answer{
				ID:         answerID.String,
				QuestionID: questionID.String,
				Text:       answerText.String,
			}
			a.Options, err = unmarshalOptions(answerOptsS)
			if err != nil {
				return nil, err
			}
			responses[lastIdx].Answers = append(responses[lastIdx].Answers, a)
		}
	}
	return responses, errors.Wrap(rows.Err(), "get responses")
}
