package middleware

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "productpulse/internal/errors"
	"productpulse/internal/infrastructure"
)

// writeProblem answers with an RFC 7807 problem carrying the trace ID.
// Middleware uses it where no ErrorHandler is wired.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, problemType, title, detail string) {
	problem := apierrors.NewProblemDetails(status, problemType, title, detail, r.URL.Path)

	traceID := infrastructure.GetTraceID(r.Context())
	if traceID == "" {
		traceID = GetReqID(r.Context())
	}
	if traceID != "" {
		problem.WithExtension("trace_id", traceID)
	}
	_ = render.Render(w, r, problem)
}
