package controllers

import (
	"net/http"

	"github.com/yanchenliu/moodlog-backend/api/responses"
	"github.com/yanchenliu/moodlog-backend/api/validators"
	"github.com/yanchenliu/moodlog-backend/internal/profiles"
	pkgerrors "github.com/yanchenliu/moodlog-backend/pkg/errors"
	"github.com/yanchenliu/moodlog-backend/pkg/logger"
)

// ProfileGet returns the caller's profile. A user who has never saved one
// gets a null payload rather than a 404 so clients can treat both alike.
func ProfileGet(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		userID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"profile": profile})
	}
}

// ProfilePut creates or replaces the caller's profile. The response reports
// whether a new row was created so clients can trigger first-save behavior.
func ProfilePut(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		userID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body profiles.UpsertProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, created, err := svc.Upsert(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, map[string]any{
			"profile": profile,
			"created": created,
		})
	}
}
