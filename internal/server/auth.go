package server

import (
	"context"
	"net/http"
)

// dashboardAuth accepts a session token in the query string once, moves it
// into the session cookie and redirects to the clean URL. Afterwards the
// cookie (or a Bearer header) authenticates.
func (s *Server) dashboardAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Logout never needs a live session, so stale cookies still get cleared.
		if r.URL.Query().Get("logout") == "1" {
			if token := sessionToken(r); token != "" {
				s.accounts.Logout(r.Context(), token)
			}
			clearSessionCookie(w)
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}

		if queryToken := r.URL.Query().Get("token"); queryToken != "" {
			if _, ok := s.accounts.Authenticate(r.Context(), queryToken); !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			setSessionCookie(w, queryToken, s.accounts.TTL())

			// Redirect to same path without token param
			newURL := *r.URL
			q := newURL.Query()
			q.Del("token")
			newURL.RawQuery = q.Encode()
			http.Redirect(w, r, newURL.String(), http.StatusFound)
			return
		}

		user, ok := s.accounts.Authenticate(r.Context(), sessionToken(r))
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey{}, user)))
	})
}
