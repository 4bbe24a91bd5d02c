package http

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/mind-engage/mindengage-taxexam/internal/users"
)

// POST /api/users/upsert  { "user_id": "...", "display_name": "..." }
func UpsertUserHandler(db *sql.DB, st *users.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID      string `json:"user_id"`
			DisplayName string `json:"display_name"`
		}
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, "bad json")
			return
		}
		id := userID(r, strings.TrimSpace(req.UserID))
		if err := st.Ensure(r.Context(), db, id, req.DisplayName); err != nil {
			respondError(w, r, err)
			return
		}
		u, err := st.Get(r.Context(), db, id)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, u)
	}
}
