package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"simpleTwitter/domain"
	"simpleTwitter/errs"
)

func (s *Server) registerTweetRoutes(r *mux.Router) {
	r.HandleFunc("/tweets", s.requireUser(s.handleListTweets)).Methods("GET")
	r.HandleFunc("/tweets", s.requireUser(s.handleCreateTweet)).Methods("POST")
	r.HandleFunc("/tweets/{tweet_id:[0-9]+}", s.requireUser(s.handleGetTweet)).Methods("GET")
	r.HandleFunc("/tweets/{tweet_id:[0-9]+}/replies", s.requireUser(s.handleListReplies)).Methods("GET")
	r.HandleFunc("/tweets/{tweet_id:[0-9]+}/replies", s.requireUser(s.handleCreateReply)).Methods("POST")
}

// handleCreateTweet handles the route "POST /api/tweets".
// It creates a tweet owned by the principal and returns it as {"tweet": ...}.
func (s *Server) handleCreateTweet(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	var body struct {
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &body); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	tweet, err := s.ts.Create(r.Context(), principal, body.Description)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	writeJSON(w, r, map[string]*domain.Tweet{"tweet": tweet})
}

// handleListTweets handles the route "GET /api/tweets".
// It returns every tweet, newest first, annotated for the principal.
func (s *Server) handleListTweets(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	tweets, err := s.ts.List(r.Context(), principal)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.setTweetPeriods(tweets)
	writeJSON(w, r, tweets)
}

// handleGetTweet handles the route "GET /api/tweets/{tweet_id}".
// Unlike the listings, it renders createdAt as a localized date.
func (s *Server) handleGetTweet(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	// Parse the tweet ID from the url.
	id, err := parseID(r, "tweet_id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Fetch the tweet with its counts.
	tweet, err := s.ts.Detail(r.Context(), id, principal)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Render both time representations.
	tweet.Period = s.times.Period(tweet.CreatedAt)
	writeJSON(w, r, &domain.TweetDetail{
		TweetView: *tweet,
		CreatedAt: s.times.Display(tweet.CreatedAt),
	})
}

// handleCreateReply handles the route "POST /api/tweets/{tweet_id}/replies".
// It creates a reply of the principal and returns it as {"reply": ...}.
func (s *Server) handleCreateReply(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	tweetID, err := parseID(r, "tweet_id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var body struct {
		Comment string `json:"comment"`
	}
	if err := decodeJSON(r, &body); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	reply, err := s.rs.Create(r.Context(), principal, tweetID, body.Comment)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	writeJSON(w, r, map[string]*domain.Reply{"reply": reply})
}

// handleListReplies handles the route "GET /api/tweets/{tweet_id}/replies".
func (s *Server) handleListReplies(w http.ResponseWriter, r *http.Request, principal *domain.User) {
	tweetID, err := parseID(r, "tweet_id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	replies, err := s.rs.ByTweet(r.Context(), tweetID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.setReplyPeriods(replies)
	writeJSON(w, r, replies)
}

// setTweetPeriods fills in the relative creation time of tweets.
func (s *Server) setTweetPeriods(tweets []domain.TweetView) {
	for i := range tweets {
		tweets[i].Period = s.times.Period(tweets[i].CreatedAt)
	}
}

// setReplyPeriods fills in the relative creation time of replies.
func (s *Server) setReplyPeriods(replies []domain.ReplyView) {
	for i := range replies {
		replies[i].Period = s.times.Period(replies[i].CreatedAt)
	}
}
