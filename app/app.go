package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/mbolis/quick-forms/config"
	"github.com/mbolis/quick-forms/store"
	"github.com/mbolis/quick-forms/submission"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config

	Store     *store.FormStore
	Collector *submission.Collector
}
