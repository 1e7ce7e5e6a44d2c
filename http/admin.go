package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"simpleTwitter/domain"
	"simpleTwitter/errs"
)

func (s *Server) registerAdminRoutes(r *mux.Router) {
	r.HandleFunc("/admin/users", s.requireAdmin(s.handleAdminUsers)).Methods("GET")
	r.HandleFunc("/admin/tweets", s.requireAdmin(s.handleAdminTweets)).Methods("GET")
	r.HandleFunc("/admin/tweets/{id:[0-9]+}", s.requireAdmin(s.handleAdminDeleteTweet)).Methods("DELETE")
}

// handleAdminUsers handles the route "GET /api/admin/users".
// It lists every user with their activity counts, most tweets first.
func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	users, err := s.us.All(r.Context())
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, users)
}

// handleAdminTweets handles the route "GET /api/admin/tweets".
func (s *Server) handleAdminTweets(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	tweets, err := s.ts.List(r.Context(), principal)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.setTweetPeriods(tweets)
	writeJSON(w, r, tweets)
}

// handleAdminDeleteTweet handles the route "DELETE /api/admin/tweets/{id}".
// The tweet's replies and likes are deleted along with it.
func (s *Server) handleAdminDeleteTweet(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	id, err := parseID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.ts.Delete(r.Context(), id); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, map[string]string{"status": "success"})
}
