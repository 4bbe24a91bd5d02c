package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mind-engage/mindengage-taxexam/internal/attempt"
	auth "github.com/mind-engage/mindengage-taxexam/internal/auth/middleware"
	"github.com/mind-engage/mindengage-taxexam/internal/bank"
	"github.com/mind-engage/mindengage-taxexam/internal/grading"
	"github.com/mind-engage/mindengage-taxexam/internal/users"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError maps core errors onto status codes. Unexpected errors are
// logged and hidden behind a generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, grading.ErrNotFound), errors.Is(err, bank.ErrQuestionNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"detail": err.Error()})
	case errors.Is(err, attempt.ErrInvalidRecord):
		respondJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondJSON(w, http.StatusInternalServerError, map[string]string{"detail": "internal error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, map[string]string{"detail": msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}

// requiredInt reads a mandatory integer query parameter.
func requiredInt(r *http.Request, key string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
	return v, err == nil
}

// userID resolves the acting user for a request: bearer subject, then the
// body or query value, then the local default.
func userID(r *http.Request, requested string) string {
	if requested == "" {
		requested = strings.TrimSpace(r.URL.Query().Get("user_id"))
	}
	return auth.UserID(r.Context(), users.DefaultUserID, strings.TrimSpace(requested))
}
