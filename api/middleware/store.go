package middleware

import (
	"net/http"

	"github.com/hysabee/hysabee-backend/api/responses"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
	"github.com/hysabee/hysabee-backend/pkg/logger"
)

// StoreContext rejects requests whose token carries no store claim. Every
// tenant-scoped route sits behind it.
func StoreContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if StoreIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
