package users

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mind-engage/mindengage-taxexam/internal/db"
)

// DefaultUserID is used when a request carries no identity.
const DefaultUserID = "local-user"

const maxDisplayName = 80

type User struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

type Store struct {
	now func() time.Time
}

func NewStore() *Store { return &Store{now: time.Now} }

// DisplayName picks the stored display name: the given name, else the user
// id, else "user"; trimmed and capped at 80 runes.
func DisplayName(userID, displayName string) string {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = strings.TrimSpace(userID)
	}
	if utf8.RuneCountInString(name) > maxDisplayName {
		name = strings.TrimSpace(string([]rune(name)[:maxDisplayName]))
	}
	if name == "" {
		return "user"
	}
	return name
}

// Ensure upserts the user row. q may be a *sql.DB or a *sql.Tx. A blank
// displayName keeps the stored name of an existing user.
func (s *Store) Ensure(ctx context.Context, q db.Querier, userID, displayName string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("users: empty user id")
	}
	keepName := strings.TrimSpace(displayName) == ""
	now := s.now().Unix()
	_, err := q.ExecContext(ctx, `
		INSERT INTO app_users (user_id, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = CASE WHEN $4 = 1 THEN app_users.display_name ELSE excluded.display_name END,
			updated_at = excluded.updated_at`,
		userID, DisplayName(userID, displayName), now, db.BoolInt(keepName))
	if err != nil {
		return fmt.Errorf("ensure user %s: %w", userID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, q db.Querier, userID string) (User, error) {
	var u User
	err := q.QueryRowContext(ctx, `
		SELECT user_id, display_name, created_at, updated_at
		FROM app_users WHERE user_id = $1`, userID).
		Scan(&u.UserID, &u.DisplayName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return u, nil
}
