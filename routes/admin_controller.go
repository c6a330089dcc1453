package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/report"
	"github.com/mbolis/quick-forms/routes/middlewares"
)

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form model.Form
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		owner := middlewares.Username(r)
		id, err := app.Store.CreateForm(r.Context(), owner, form)
		if model.IsValidation(err) {
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "create_form.validate", "%s", err)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": id,
		})
	}
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := app.Store.ListForms(r.Context(), middlewares.Username(r))
		if err != nil {
			httpx.LogInternalError(w, "db.get_forms", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"forms": forms,
		})
	}
}

func GetFormById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := formID(w, r)
		if id == "" {
			return
		}

		form, err := app.Store.OwnerForm(r.Context(), middlewares.Username(r), id)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "get_form", id)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}

		render.JSON(w, r, form)
	}
}

func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := formID(w, r)
		if id == "" {
			return
		}

		var form model.Form
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		owner := middlewares.Username(r)
		err = app.Store.UpdateForm(r.Context(), owner, id, form)
		switch {
		case errors.Is(err, model.ErrNotFound):
			httpx.LogNotFound(w, "update_form", id)
			return
		case model.IsValidation(err):
			httpx.LogStatusMsg(w, http.StatusUnprocessableEntity, log.DebugLevel, "update_form.validate", "%s", err)
			return
		case err != nil:
			httpx.LogInternalError(w, "db.update_form", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := formID(w, r)
		if id == "" {
			return
		}

		err := app.Store.DeleteForm(r.Context(), middlewares.Username(r), id)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "delete_form", id)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.delete_form", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// GetFormResponses returns the owner's view of collected responses: raw
// rows, the flattened per-response detail and the per-question summary.
func GetFormResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := formID(w, r)
		if id == "" {
			return
		}

		form, responses, err := ownerResponses(app, r, id)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "get_responses", id)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_responses", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"responses": responses,
			"details":   report.Details(form, responses),
			"summary":   report.Summarize(form, responses),
		})
	}
}

// ExportFormResponses streams all responses as a CSV download.
func ExportFormResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := formID(w, r)
		if id == "" {
			return
		}

		form, responses, err := ownerResponses(app, r, id)
		if errors.Is(err, model.ErrNotFound) {
			httpx.LogNotFound(w, "export_responses", id)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.export_responses", err)
			return
		}

		w.Header().Set("content-type", "text/csv; charset=utf-8")
		w.Header().Set("content-disposition", `attachment; filename="`+report.ExportFilename(form.Title)+`"`)

		err = report.WriteCSV(w, form, responses)
		if err != nil {
			log.Errorf("export_responses.write: %s", err)
		}
	}
}

func ownerResponses(app app.App, r *http.Request, id string) (model.Form, []model.Response, error) {
	form, err := app.Store.OwnerForm(r.Context(), middlewares.Username(r), id)
	if err != nil {
		return model.Form{}, nil, err
	}

	responses, err := app.Store.ResponsesWithAnswers(r.Context(), id)
	if err != nil {
		return model.Form{}, nil, err
	}
	return form, responses, nil
}

// Dashboard reports the owner's aggregate counts.
func Dashboard(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, responses, err := app.Store.Counts(r.Context(), middlewares.Username(r))
		if err != nil {
			httpx.LogInternalError(w, "db.dashboard", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"forms":     forms,
			"responses": responses,
		})
	}
}
