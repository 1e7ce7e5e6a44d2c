package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"simpleTwitter/domain"
	"simpleTwitter/errs"
)

func (s *Server) registerFollowRoutes(r *mux.Router) {
	r.HandleFunc("/followships", s.requireUser(s.handleFollow)).Methods("POST")
	r.HandleFunc("/followships/{followingId:[0-9]+}", s.requireUser(s.handleUnfollow)).Methods("DELETE")
}

// handleFollow handles the route "POST /api/followships".
// The body names the user to follow, as a number or a numeric string: {"id": 2}.
func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	var body struct {
		ID json.Number `json:"id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	followingID, err := strconv.Atoi(body.ID.String())
	if err != nil || followingID <= 0 {
		errs.ReturnError(w, r, errs.IdInvalid)
		return
	}

	followship, err := s.fs.Follow(r.Context(), principal, followingID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	writeJSON(w, r, map[string]*domain.Followship{"followship": followship})
}

// handleUnfollow handles the route "DELETE /api/followships/{followingId}".
func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	followingID, err := parseID(r, "followingId")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	followship, err := s.fs.Unfollow(r.Context(), principal, followingID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	writeJSON(w, r, map[string]*domain.Followship{"followship": followship})
}
