package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"simpleTwitter/domain"
	"simpleTwitter/errs"
)

func (s *Server) registerLikeRoutes(r *mux.Router) {
	r.HandleFunc("/tweets/{id:[0-9]+}/like", s.requireUser(s.handleLike)).Methods("POST")
	r.HandleFunc("/tweets/{id:[0-9]+}/unlike", s.requireUser(s.handleUnlike)).Methods("POST")
}

// handleLike handles the route "POST /api/tweets/{id}/like".
// It returns the created Like.
func (s *Server) handleLike(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	// Parse the tweet ID from the url.
	tweetID, err := parseID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Like the tweet, unless it's missing or already liked.
	like, err := s.ls.Like(r.Context(), principal, tweetID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	writeJSON(w, r, like)
}

// handleUnlike handles the route "POST /api/tweets/{id}/unlike".
// It returns the removed Like.
func (s *Server) handleUnlike(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	tweetID, err := parseID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	like, err := s.ls.Unlike(r.Context(), principal, tweetID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	writeJSON(w, r, like)
}
