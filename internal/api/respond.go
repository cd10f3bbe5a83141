package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	rerrors "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/jira"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status with [rerrors.HTTPStatus]. Uncoded JIRA
// errors are classified first.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if rerrors.GetCode(err) == "" && isJIRAError(err) {
		err = jira.AsCoded(err)
	}
	status := rerrors.HTTPStatus(err)
	if status >= 500 {
		s.Logger.Error("handler failed", "path", r.URL.Path, "err", err, "request_id", RequestID(r.Context()))
	}
	writeJSON(w, status, errorBody{Error: rerrors.UserMessage(err), Code: string(rerrors.GetCode(err))})
}

func isJIRAError(err error) bool {
	return errors.Is(err, jira.ErrNotFound) || errors.Is(err, jira.ErrNetwork) || errors.Is(err, jira.ErrUnauthorized)
}

func badRequest(msg string) error {
	return rerrors.New(rerrors.ErrCodeInvalidInput, "%s", msg)
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is required")
		}
		return rerrors.Wrap(rerrors.ErrCodeInvalidInput, err, "invalid JSON body: %v", err)
	}
	return nil
}
