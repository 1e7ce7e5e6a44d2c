package http

import (
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/gorilla/mux"

	"simpleTwitter/domain"
	"simpleTwitter/errs"
)

func (s *Server) registerUserRoutes(r *mux.Router) {
	// The most followed users.
	r.HandleFunc("/users/top", s.requireUser(s.handleTopUsers)).Methods("GET")

	// A user's profile and the things they did.
	r.HandleFunc("/users/{id:[0-9]+}", s.requireUser(s.handleGetProfile)).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}/tweets", s.requireUser(s.handleUserTweets)).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}/replied_tweets", s.requireUser(s.handleUserReplies)).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}/likes", s.requireUser(s.handleUserLikes)).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}/followings", s.requireUser(s.handleFollowings)).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}/followers", s.requireUser(s.handleFollowers)).Methods("GET")

	// Update the user's data.
	r.HandleFunc("/users/{id:[0-9]+}/setting", s.requireUser(s.handleUpdateSettings)).Methods("PUT")
	r.HandleFunc("/users/{id:[0-9]+}", s.requireUser(s.handleUpdateProfile)).Methods("PUT")
}

// handleTopUsers handles the route "GET /api/users/top".
func (s *Server) handleTopUsers(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	users, err := s.us.TopFollowed(r.Context(), principal, 0)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, map[string][]domain.TopUser{"topUsers": users})
}

// handleGetProfile handles the route "GET /api/users/{id}".
// It returns the user's public data along with its follow counts.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	id, err := parseID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	profile, err := s.us.Profile(r.Context(), id, principal)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, profile)
}

// handleUserTweets handles the route "GET /api/users/{id}/tweets".
func (s *Server) handleUserTweets(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	id, err := parseID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	tweets, err := s.ts.ByUser(r.Context(), id, principal)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.setTweetPeriods(tweets)
	writeJSON(w, r, tweets)
}

// handleUserReplies handles the route "GET /api/users/{id}/replied_tweets".
func (s *Server) handleUserReplies(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	id, err := parseID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	replies, err := s.rs.ByUser(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.setReplyPeriods(replies)
	writeJSON(w, r, replies)
}

// handleUserLikes handles the route "GET /api/users/{id}/likes".
// The period of a liked tweet tells when it was liked, not when it was written.
func (s *Server) handleUserLikes(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	id, err := parseID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	tweets, err := s.ts.LikedByUser(r.Context(), id, principal)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	for i := range tweets {
		tweets[i].Period = s.times.Period(tweets[i].LikedDate)
	}
	writeJSON(w, r, tweets)
}

// handleFollowings handles the route "GET /api/users/{id}/followings".
func (s *Server) handleFollowings(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	id, err := parseID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	followings, err := s.us.Followings(r.Context(), id, principal)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, followings)
}

// handleFollowers handles the route "GET /api/users/{id}/followers".
func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	id, err := parseID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	followers, err := s.us.Followers(r.Context(), id, principal)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, followers)
}

// handleUpdateSettings handles the route "PUT /api/users/{id}/setting".
// It changes the account, name, email and password of the principal.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	// Parse the User ID from the url.
	id, err := parseID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Parse the submitted settings.
	var upd domain.SettingsUpdate
	if err := decodeJSON(r, &upd); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Validate and save them.
	user, err := s.us.UpdateSettings(r.Context(), id, principal, &upd)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	writeJSON(w, r, user.Public())
}

// handleUpdateProfile handles the route "PUT /api/users/{id}".
// It accepts a multipart form with the fields name and introduction and the optional
// files avatar and cover, or a json body with just name and introduction.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	// Parse the User ID from the url.
	id, err := parseID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Parse the submitted profile data.
	upd, err := parseProfileUpdate(w, r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Validate the data, upload the images and save the profile.
	user, err := s.us.UpdateProfile(r.Context(), id, principal, upd)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	writeJSON(w, r, user.Public())
}

// parseProfileUpdate reads a profile update from a multipart form or a json body.
func parseProfileUpdate(w http.ResponseWriter, r *http.Request) (*domain.ProfileUpdate, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var body struct {
			Name         string `json:"name"`
			Introduction string `json:"introduction"`
		}
		if err := decodeJSON(r, &body); err != nil {
			return nil, err
		}
		return &domain.ProfileUpdate{Name: body.Name, Introduction: body.Introduction}, nil
	}

	// Both images may be at their size limit.
	r.Body = http.MaxBytesReader(w, r.Body, 2*domain.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(domain.MaxUploadSize); err != nil {
		return nil, errs.Errorf(errs.EINVALID, "Invalid multipart form.")
	}
	return &domain.ProfileUpdate{
		Name:         r.FormValue("name"),
		Introduction: r.FormValue("introduction"),
		Avatar:       formFile(r.MultipartForm, "avatar"),
		Cover:        formFile(r.MultipartForm, "cover"),
	}, nil
}

// formFile returns the first file uploaded under key, or nil.
func formFile(form *multipart.Form, key string) *multipart.FileHeader {
	if form == nil || len(form.File[key]) == 0 {
		return nil
	}
	return form.File[key][0]
}
