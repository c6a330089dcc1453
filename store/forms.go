package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/quick-forms/model"
)

// ValidateDefinition checks a form definition before it is persisted.
// All problems are reported at once.
func ValidateDefinition(form model.Form) error {
	var problems []string
	if form.Title == "" {
		problems = append(problems, "title is required")
	}
	for i, q := range form.Questions {
		if q.Text == "" {
			problems = append(problems, fmt.Sprintf("question %d: text is required", i+1))
		}
		if !model.ValidType(q.Type) {
			problems = append(problems, fmt.Sprintf("question %d: unknown type %q", i+1, q.Type))
			continue
		}
		if model.ChoiceType(q.Type) {
			if len(q.Options) < 2 {
				problems = append(problems, fmt.Sprintf("question %d: needs at least 2 options", i+1))
			}
		} else if len(q.Options) > 0 {
			problems = append(problems, fmt.Sprintf("question %d: type %q takes no options", i+1, q.Type))
		}
	}
	if len(problems) > 0 {
		return &model.ValidationError{Problems: problems}
	}
	return nil
}

// CreateForm inserts a form and its full question list in one transaction.
// An empty question list is fine: the form row is created alone.
func (s *FormStore) CreateForm(ctx context.Context, owner string, form model.Form) (id string, err error) {
	if err = ValidateDefinition(form); err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	id = newID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO form (id, title, description, created_at, owner_id, is_public, allow_multiple_submissions)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		form.Title,
		form.Description,
		time.Now(),
		owner,
		form.IsPublic,
		form.AllowMultipleSubmissions,
	)
	if err != nil {
		return "", errors.Wrap(err, "insert form")
	}

	err = insertQuestions(ctx, tx, id, form.Questions)
	if err != nil {
		return "", err
	}

	err = tx.Commit()
	if err != nil {
		return "", errors.Wrap(err, "commit form")
	}
	return id, nil
}

// UpdateForm rewrites the form row and replaces its question list wholesale:
// all existing questions are deleted and the new list inserted with fresh
// ids. Answers already recorded against the old question ids are left alone.
func (s *FormStore) UpdateForm(ctx context.Context, owner, id string, form model.Form) error {
	if err := ValidateDefinition(form); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE form
		SET
			title = ?,
			description = ?,
			is_public = ?,
			allow_multiple_submissions = ?
		WHERE	id = ?
			AND owner_id = ?`,
		form.Title,
		form.Description,
		form.IsPublic,
		form.AllowMultipleSubmissions,
		id,
		owner,
	)
	if err != nil {
		return errors.Wrap(err, "update form")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update form: verify")
	}
	if n < 1 {
		return model.ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM question
		WHERE form_id = ?`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "update form: delete questions")
	}

	err = insertQuestions(ctx, tx, id, form.Questions)
	if err != nil {
		return err
	}

	err = tx.Commit()
	return errors.Wrap(err, "commit form update")
}

func insertQuestions(ctx context.Context, tx *sql.Tx, formID string, questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO question (id, form_id, text, type, options, required, order_number)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "insert questions: prepare")
	}
	defer stmt.Close()

	for _, q := range questions {
		opts, err := marshalOptions(q.Options)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx, newID(), formID, q.Text, q.Type, opts, q.Required, q.OrderNumber)
		if err != nil {
			return errors.Wrap(err, "insert questions")
		}
	}
	return nil
}

// DeleteForm removes an owner's form; sqlite cascade rules take the
// questions, responses and answers with it.
func (s *FormStore) DeleteForm(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM form
		WHERE	id = ?
			AND owner_id = ?`,
		id,
		owner,
	)
	if err != nil {
		return errors.Wrap(err, "delete form")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete form: verify")
	}
	if n < 1 {
		return model.ErrNotFound
	}
	return nil
}

// FormWithQuestions loads one form and its questions in display order.
// It does not check ownership or visibility; callers decide what to expose.
func (s *FormStore) FormWithQuestions(ctx context.Context, id string) (form model.Form, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT id, title, description, created_at, owner_id, is_public, allow_multiple_submissions
		FROM form
		WHERE id = ?`,
		id,
	).Scan(
		&form.ID, &form.Title, &form.Description, &form.CreatedAt,
		&form.OwnerID, &form.IsPublic, &form.AllowMultipleSubmissions,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return form, model.ErrNotFound
	}
	if err != nil {
		return form, errors.Wrap(err, "get form")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, text, type, options, required, order_number
		FROM question
		WHERE form_id = ?
		ORDER BY order_number`,
		id,
	)
	if err != nil {
		return form, errors.Wrap(err, "get form: questions")
	}
	defer rows.Close()

	for rows.Next() {
		var q model.Question
		var opts sql.NullString
		err = rows.Scan(&q.ID, &q.FormID, &q.Text, &q.Type, &opts, &q.Required, &q.OrderNumber)
		if err != nil {
			return form, errors.Wrap(err, "get form: scan question")
		}
		q.Options, err = unmarshalOptions(opts)
		if err != nil {
			return form, err
		}
		form.Questions = append(form.Questions, q)
	}
	return form, errors.Wrap(rows.Err(), "get form: questions")
}

// OwnerForm is FormWithQuestions restricted to the caller's own forms.
func (s *FormStore) OwnerForm(ctx context.Context, owner, id string) (model.Form, error) {
	form, err := s.FormWithQuestions(ctx, id)
	if err != nil {
		return form, err
	}
	if form.OwnerID != owner {
		return model.Form{}, model.ErrNotFound
	}
	return form, nil
}

// ListForms returns the owner's forms, newest first, with response counts.
func (s *FormStore) ListForms(ctx context.Context, owner string) ([]model.Form, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			f.id, f.title, f.description, f.created_at, f.is_public, f.allow_multiple_submissions,
			(SELECT COUNT(*) FROM response r WHERE r.form_id = f.id)
		FROM form f
		WHERE f.owner_id = ?
		ORDER BY f.created_at DESC`,
		owner,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list forms")
	}
	defer rows.Close()

	forms := []model.Form{}
	for rows.Next() {
		f := model.Form{OwnerID: owner}
		err = rows.Scan(
			&f.ID, &f.Title, &f.Description, &f.CreatedAt,
			&f.IsPublic, &f.AllowMultipleSubmissions,
			&f.ResponseCount,
		)
		if err != nil {
			return nil, errors.Wrap(err, "list forms: scan")
		}
		forms = append(forms, f)
	}
	return forms, errors.Wrap(rows.Err(), "list forms")
}

// Counts reports the owner's total forms and responses for the dashboard.
func (s *FormStore) Counts(ctx context.Context, owner string) (forms, responses int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM form f WHERE f.owner_id = ?),
			(SELECT COUNT(*) FROM response r
				INNER JOIN form f ON (f.id = r.form_id)
				WHERE f.owner_id = ?)`,
		owner,
		owner,
	).Scan(&forms, &responses)
	return forms, responses, errors.Wrap(err, "count forms")
}
