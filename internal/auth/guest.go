package auth

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	authmw "github.com/mind-engage/mindengage-taxexam/internal/auth/middleware"
	"github.com/mind-engage/mindengage-taxexam/internal/users"
)

const (
	GuestCookie = "te_guest_id"
	guestPrefix = "guest|"
)

// GuestLoginHandler hands out a bearer token for a browser-bound guest
// user. The guest id lives in a cookie so the same browser keeps its solve
// history across token expiry.
func GuestLoginHandler(a *authmw.AuthService, d *sql.DB, u *users.Store, ttl time.Duration) http.HandlerFunc {
	type out struct {
		AccessToken string `json:"access_token"`
		UserID      string `json:"user_id"`
		DisplayName string `json:"display_name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID := ""
		if c, err := r.Cookie(GuestCookie); err == nil && strings.HasPrefix(c.Value, guestPrefix) {
			if _, err := u.Get(ctx, d, c.Value); err == nil {
				userID = c.Value
			}
		}
		if userID == "" {
			sfx := strconv.FormatInt(time.Now().UnixNano(), 36)
			userID = guestPrefix + sfx
			if err := u.Ensure(ctx, d, userID, "guest-"+sfx[len(sfx)-6:]); err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("guest user")
				http.Error(w, "create guest", http.StatusInternalServerError)
				return
			}
		}

		usr, err := u.Get(ctx, d, userID)
		if err != nil {
			http.Error(w, "load guest", http.StatusInternalServerError)
			return
		}
		tok, err := a.IssueJWT(usr.UserID, usr.DisplayName, ttl)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     GuestCookie,
			Value:    usr.UserID,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(ttl),
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out{AccessToken: tok, UserID: usr.UserID, DisplayName: usr.DisplayName})
	}
}
