package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-taxexam/internal/attempt"
	"github.com/mind-engage/mindengage-taxexam/internal/bank"
	"github.com/mind-engage/mindengage-taxexam/internal/dashboard"
	"github.com/mind-engage/mindengage-taxexam/internal/notes"
	"github.com/mind-engage/mindengage-taxexam/internal/users"
)

// Deps holds the core services the handlers call into.
type Deps struct {
	DB        *sql.DB
	Bank      bank.Store
	Attempts  *attempt.Service
	Recorder  *attempt.Recorder
	Dashboard *dashboard.Aggregator
	Notes     *notes.Store
	Users     *users.Store
}

// Mount registers the /api routes on r.
func Mount(r chi.Router, d Deps) {
	r.Route("/api", func(ar chi.Router) {
		ar.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		ar.Post("/users/upsert", UpsertUserHandler(d.DB, d.Users))
		ar.Get("/users/{userID}/subject-recent-scores", RecentScoresHandler(d.Recorder))
		ar.Get("/attempts", ListAttemptsHandler(d.Recorder))
		ar.Get("/dashboard/learning-metrics", LearningMetricsHandler(d.Dashboard))

		ar.Route("/mock", func(mr chi.Router) {
			mr.Get("/options", MockOptionsHandler(d.Bank))
			mr.Get("/questions", MockQuestionsHandler(d.Bank))
			mr.Get("/user-stats", MockUserStatsHandler(d.Recorder))
			mr.Get("/explanation/{questionID}", ExplanationHandler(d.Bank))
			mr.Post("/submit", MockSubmitHandler(d.Attempts))
		})

		ar.Route("/ox", func(oxr chi.Router) {
			oxr.Get("/options", OXOptionsHandler(d.Bank))
			oxr.Get("/questions", OXCandidatesHandler(d.Bank))
			oxr.Get("/questions/v2", OXQuestionsHandler(d.Bank))
			oxr.Get("/user-stats", OXUserStatsHandler(d.Recorder))
			oxr.Post("/submit", OXSubmitHandler(d.Attempts))
		})

		ar.Get("/bank-notes", ListNotesHandler(d.Notes))
		ar.Post("/bank-notes", UpsertNoteHandler(d.Notes))
		ar.Post("/bank-notes/delete", DeleteNoteHandler(d.Notes))
		ar.Post("/favorites", UpsertFavoriteHandler(d.Notes))
		ar.Post("/favorites/delete", DeleteFavoriteHandler(d.Notes))
		ar.Get("/choice-visibility", GetChoiceVisibilityHandler(d.Notes))
		ar.Post("/choice-visibility", SetChoiceVisibilityHandler(d.Notes))
	})
}
