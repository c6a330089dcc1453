package store

import (
	"database/sql"
	"encoding/json"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
)

// FormStore owns all SQL against the form, question, response and answer
// tables. Mutating owner operations are authorized by filtering on owner_id
// in the query itself, not by a separate permission check.
type FormStore struct {
	db *sql.DB
}

func New(db *sql.DB) *FormStore {
	return &FormStore{db}
}

func newID() string {
	return uuid.Must(uuid.NewV4()).String()
}

func marshalOptions(opts []string) (any, error) {
	if opts == nil {
		return nil, nil
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return nil, errors.Wrap(err, "marshal options")
	}
	return string(b), nil
}

func unmarshalOptions(raw sql.NullString) ([]string, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var opts []string
	err := json.Unmarshal([]byte(raw.String), &opts)
	if err != nil {
		return nil, errors.Wrap(err, "parse options")
	}
	return opts, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
