package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-taxexam/internal/attempt"
	"github.com/mind-engage/mindengage-taxexam/internal/dashboard"
)

// GET /api/mock/user-stats?exam_year=2024&subject_code=...
func MockUserStatsHandler(rec *attempt.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, ok := requiredInt(r, "exam_year")
		subject := strings.TrimSpace(r.URL.Query().Get("subject_code"))
		if !ok || year < 1900 || year > 2100 || subject == "" {
			badRequest(w, "exam_year and subject_code are required")
			return
		}
		stats, err := rec.MockQuestionStats(r.Context(), userID(r, ""), year, subject)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, stats)
	}
}

// GET /api/ox/user-stats?subject_code=...
func OXUserStatsHandler(rec *attempt.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := strings.TrimSpace(r.URL.Query().Get("subject_code"))
		if subject == "" {
			badRequest(w, "subject_code is required")
			return
		}
		stats, err := rec.OXItemStats(r.Context(), userID(r, ""), subject)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, stats)
	}
}

// GET /api/users/{userID}/subject-recent-scores
func RecentScoresHandler(rec *attempt.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scores, err := rec.ListSubjectRecentScores(r.Context(), userID(r, chi.URLParam(r, "userID")))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, scores)
	}
}

// GET /api/attempts?limit=50
func ListAttemptsHandler(rec *attempt.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := rec.ListAttempts(r.Context(), userID(r, ""), parseIntDefault(r.URL.Query().Get("limit"), 50))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// GET /api/dashboard/learning-metrics
func LearningMetricsHandler(agg *dashboard.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := agg.Metrics(r.Context(), userID(r, ""))
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, m)
	}
}
