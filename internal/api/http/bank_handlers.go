package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-taxexam/internal/bank"
	"github.com/mind-engage/mindengage-taxexam/internal/grading"
)

// GET /api/mock/options
func MockOptionsHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := store.ListMockOptions(r.Context())
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, bank.EligibleOptions(opts))
	}
}

// GET /api/mock/questions?exam_year=2024&subject_code=...
// Answers and explanations are stripped.
func MockQuestionsHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, ok := requiredInt(r, "exam_year")
		subject := strings.TrimSpace(r.URL.Query().Get("subject_code"))
		if !ok || subject == "" {
			badRequest(w, "exam_year and subject_code are required")
			return
		}
		qs, err := store.GetMockQuestions(r.Context(), year, subject)
		if err != nil {
			respondError(w, r, err)
			return
		}
		if len(qs) == 0 {
			respondError(w, r, grading.ErrNotFound)
			return
		}
		out := make([]bank.Question, 0, len(qs))
		for _, q := range qs {
			out = append(out, q.Redacted())
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// GET /api/mock/explanation/{questionID}
func ExplanationHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "questionID"), 10, 64)
		if err != nil {
			badRequest(w, "bad question id")
			return
		}
		e, err := store.GetExplanation(r.Context(), id)
		if err != nil {
			respondError(w, r, err)
			return
		}
		e.CorrectAnswer = grading.NormalizeAnswer(e.CorrectAnswer)
		respondJSON(w, http.StatusOK, e)
	}
}

// GET /api/ox/options
func OXOptionsHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := store.ListOXSubjectOptions(r.Context())
		if err != nil {
			respondError(w, r, err)
			return
		}
		if opts == nil {
			opts = []bank.OXSubjectOption{}
		}
		respondJSON(w, http.StatusOK, opts)
	}
}

// GET /api/ox/questions/v2?subject_code=...
func OXQuestionsHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := strings.TrimSpace(r.URL.Query().Get("subject_code"))
		if subject == "" {
			badRequest(w, "subject_code is required")
			return
		}
		items, err := store.GetOXQuestions(r.Context(), subject)
		if err != nil {
			respondError(w, r, err)
			return
		}
		if len(items) == 0 {
			respondError(w, r, grading.ErrNotFound)
			return
		}
		respondJSON(w, http.StatusOK, items)
	}
}

// GET /api/ox/questions?exam_year=2024&subject_code=...
func OXCandidatesHandler(store bank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, ok := requiredInt(r, "exam_year")
		subject := strings.TrimSpace(r.URL.Query().Get("subject_code"))
		if !ok || subject == "" {
			badRequest(w, "exam_year and subject_code are required")
			return
		}
		items, err := store.GetOXCandidates(r.Context(), year, subject)
		if err != nil {
			respondError(w, r, err)
			return
		}
		if len(items) == 0 {
			respondError(w, r, grading.ErrNotFound)
			return
		}
		respondJSON(w, http.StatusOK, items)
	}
}
