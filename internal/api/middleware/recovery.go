package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/wordgame-go/internal/api/apierr"
	"github.com/mcoot/wordgame-go/internal/middleware"
)

// Recovery turns panics into JSON 500 responses that quote the request id
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	id := middleware.RequestID(r.Context())
	if id == "" {
		apierr.WriteError(w, apierr.NewInternalError())
		return
	}
	apierr.WriteError(w, apierr.NewInternalErrorf("Internal server error (request %s)", id))
}
