package student

import (
	"errors"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/logger"
	"github.com/aanand-mishra/student-records/internal/service"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

var errBadBody = errors.New("malformed request body")

type errorMapping struct {
	target  error
	status  int
	message string
}

var errorTable = []errorMapping{
	{errBadBody, http.StatusBadRequest, "Invalid Request Data"},
	{service.ErrInvalidInput, http.StatusBadRequest, "Invalid Request Data"},
	{storage.ErrInvalidID, http.StatusBadRequest, "Invalid Student ID"},
	{storage.ErrNotFound, http.StatusNotFound, "No Student Found"},
	{storage.ErrDuplicateRollNumber, http.StatusConflict, "Roll Number Already Exists"},
}

const serverErrorMessage = "There was a Server Side Error"

// statusFromError maps err onto an HTTP status and client-facing message.
// Anything unknown is a 500.
func statusFromError(err error) (int, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, serverErrorMessage
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFromError(err)

	log := logger.FromRequest(r)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		log.Info().Err(err).Int("status", status).Msg("request rejected")
	}

	response.WriteJSON(w, status, response.Error(message, err))
}
