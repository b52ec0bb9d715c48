package controllers

import (
	"net/http"

	"github.com/yanchenliu/moodlog-backend/api/responses"
	"github.com/yanchenliu/moodlog-backend/internal/seeder"
	pkgerrors "github.com/yanchenliu/moodlog-backend/pkg/errors"
	"github.com/yanchenliu/moodlog-backend/pkg/logger"
)

// RPCCreateSampleData provisions sample records for the caller. Safe to call
// repeatedly; only the first call does any work.
func RPCCreateSampleData(svc seeder.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seeder unavailable"))
			return
		}

		userID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		seeded, err := svc.Seed(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"seeded": seeded})
	}
}
