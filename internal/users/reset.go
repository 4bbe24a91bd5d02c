package users

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mind-engage/mindengage-taxexam/internal/db"
)

// userTables lists user-owned tables, children first. The rollup points at
// attempts with ON DELETE RESTRICT, so it goes before them.
var userTables = []string{
	"user_exam_attempt_answers",
	"user_subject_recent_scores",
	"user_exam_attempts",
	"user_choice_visibility",
	"bank_user_notes",
	"bank_user_favorites",
	"app_users",
}

// ResetResult reports deleted row counts per table.
type ResetResult struct {
	Scope   string           `json:"scope"`
	UserID  string           `json:"user_id,omitempty"`
	Deleted map[string]int64 `json:"deleted"`
}

// Reset deletes every user-owned row, for one user when userID is non-empty
// or for all users otherwise, in a single transaction.
func Reset(ctx context.Context, d *sql.DB, userID string) (ResetResult, error) {
	res := ResetResult{Scope: "all-users", UserID: userID, Deleted: make(map[string]int64, len(userTables))}
	if userID != "" {
		res.Scope = "single-user"
	}
	err := db.WithTx(ctx, d, nil, func(tx *sql.Tx) error {
		for _, table := range userTables {
			query, args := resetStatement(table, userID)
			r, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("reset %s: %w", table, err)
			}
			n, _ := r.RowsAffected()
			res.Deleted[table] = n
		}
		return nil
	})
	if err != nil {
		return ResetResult{}, err
	}
	return res, nil
}

func resetStatement(table, userID string) (string, []any) {
	if userID == "" {
		return "DELETE FROM " + table, nil
	}
	if table == "user_exam_attempt_answers" {
		return `DELETE FROM user_exam_attempt_answers
			WHERE attempt_id IN (SELECT id FROM user_exam_attempts WHERE user_id = $1)`, []any{userID}
	}
	return "DELETE FROM " + table + " WHERE user_id = $1", []any{userID}
}
