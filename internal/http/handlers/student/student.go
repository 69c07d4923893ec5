// Package student contains all HTTP handlers for the Student resource.
//
// Handlers are built by factory functions that close over their
// dependencies and return an http.HandlerFunc:
//
//	r.Post("/api/students", student.New(svc))
//
// New(svc) runs once at startup; the returned func runs on every request.
package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aanand-mishra/student-records/internal/logger"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Service is the record service the handlers delegate to.
type Service interface {
	Create(ctx context.Context, req types.CreateStudentRequest) (types.Student, error)
	List(ctx context.Context) ([]types.Student, error)
	Get(ctx context.Context, id string) (types.Student, error)
	Update(ctx context.Context, id string, req types.UpdateStudentRequest) (types.Student, error)
	Delete(ctx context.Context, id string) (types.Student, error)
}

// New handles POST /api/students.
//
// Request body (JSON or form-encoded):
//
//	{ "firstName": "Ada", "lastName": "Lovelace", "rollNumber": "R100",
//	  "phoneNumber": "555-0100", "password": "secret" }
//
// Success: 201 with the stored record (without its password digest).
func New(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)
		log.Info().Msg("creating a student")

		var req types.CreateStudentRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		created, err := svc.Create(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}

		log.Info().Str("id", created.ID).Msg("student created")
		response.WriteJSON(w, http.StatusCreated, response.OK("Student Created Successfully", created))
	}
}

// GetList handles GET /api/students. An empty collection is a 200 with
// "data": [].
func GetList(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.FromRequest(r).Info().Msg("getting all students")

		students, err := svc.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.OK("All Students Retrieved Successfully", students))
	}
}

// GetByID handles GET /api/students/{id}.
func GetByID(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		logger.FromRequest(r).Info().Str("id", id).Msg("getting a student")

		st, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.OK("Student Retrieved Successfully", st))
	}
}

// Update handles PUT /api/students/{id}.
//
// Only the supplied fields change; a supplied password is re-hashed.
// Success: 200 with the record as it is after the update.
func Update(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		log := logger.FromRequest(r)
		log.Info().Str("id", id).Msg("updating a student")

		var req types.UpdateStudentRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, req)
		if err != nil {
			writeError(w, r, err)
			return
		}

		log.Info().Str("id", id).Msg("student updated")
		response.WriteJSON(w, http.StatusOK, response.OK("Student Updated Successfully", updated))
	}
}

// Delete handles DELETE /api/students/{id}.
// Success: 200 with the record's last content.
func Delete(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		log := logger.FromRequest(r)
		log.Info().Str("id", id).Msg("deleting a student")

		deleted, err := svc.Delete(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}

		log.Info().Str("id", id).Msg("student deleted")
		response.WriteJSON(w, http.StatusOK, response.OK("Student Deleted Successfully", deleted))
	}
}

// decodeBody fills dst from a JSON or application/x-www-form-urlencoded
// body. Form fields are mapped onto dst's JSON names; a repeated field
// keeps its last value.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		return decodeForm(r, dst)
	}

	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: request body is empty", errBadBody)
	}
	if err != nil {
		return fmt.Errorf("%w: %s", errBadBody, err.Error())
	}
	return nil
}

func decodeForm(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %s", errBadBody, err.Error())
	}

	fields := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			fields[key] = values[len(values)-1]
		}
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: %s", errBadBody, err.Error())
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s", errBadBody, err.Error())
	}
	return nil
}
