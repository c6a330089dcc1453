package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/submission"
)

// PublicGetFormById serves a published form to respondents. Private forms
// are indistinguishable from missing ones.
func PublicGetFormById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := formID(w, r)
		if id == "" {
			return
		}

		form, err := app.Store.FormWithQuestions(r.Context(), id)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "get_form", id)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}
		if !form.IsPublic {
			httpx.LogNotFound(w, "get_form", id)
			return
		}

		form.OwnerID = ""
		form.Submitted = hasMarker(r, id)
		render.JSON(w, r, form)
	}
}

// PublicSubmitForm records one respondent submission. On success, when the
// form disallows repeats, it plants the 1-year advisory marker cookie.
func PublicSubmitForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := formID(w, r)
		if id == "" {
			return
		}

		var sub model.Submission
		err := render.DecodeJSON(r.Body, &sub)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		result, err := app.Collector.Submit(r.Context(), id, sub, hasMarker(r, id))
		switch {
		case errors.Is(err, model.ErrNotFound):
			httpx.LogNotFound(w, "submit_form", id)
			return
		case errors.Is(err, model.ErrDuplicate):
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "submit_form.duplicate", "already submitted")
			return
		case model.IsValidation(err):
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "submit_form.validate", "%s", err)
			return
		case err != nil:
			httpx.LogInternalError(w, "db.submit_form", err)
			return
		}

		if result.SetMarker {
			http.SetCookie(w, submission.MarkerCookie(id))
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": result.ResponseID,
		})
	}
}

func hasMarker(r *http.Request, formID string) bool {
	c, err := r.Cookie(submission.MarkerName(formID))
	return err == nil && c.Value == "true"
}
