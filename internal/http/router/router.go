// Package router assembles the HTTP surface: the middleware chain, the
// /api/students routes and the JSON fallbacks for unknown paths and
// methods.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aanand-mishra/student-records/internal/http/handlers/health"
	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/http/middleware"
	"github.com/aanand-mishra/student-records/internal/logger"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Log            *logger.Logger
	Students       student.Service
	Health         health.Pinger
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// New returns the application handler.
//
//	POST   /api/students        create
//	GET    /api/students        list
//	GET    /api/students/{id}   fetch one
//	PUT    /api/students/{id}   partial update
//	DELETE /api/students/{id}   delete
//	GET    /healthz             storage ping
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.TraceID(d.Log))
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.CORS(d.AllowedOrigins))
	r.Use(middleware.ParameterPollution)
	if d.RequestTimeout > 0 {
		r.Use(chimw.Timeout(d.RequestTimeout))
	}

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/healthz", health.New(d.Health))

	r.Route("/api/students", func(r chi.Router) {
		r.Post("/", student.New(d.Students))
		r.Get("/", student.GetList(d.Students))
		r.Get("/{id}", student.GetByID(d.Students))
		r.Put("/{id}", student.Update(d.Students))
		r.Delete("/{id}", student.Delete(d.Students))
	})

	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	response.WriteJSON(w, http.StatusNotFound, response.Error("Bad URL Request: Page Not Found", nil))
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	response.WriteJSON(w, http.StatusMethodNotAllowed, response.Error("Method Not Allowed", nil))
}
