package domain

import "time"

// The types in this file are the response shapes of the API. They are built field by
// field from query results, so a password or role can never leak into a response.
// Period fields hold a human readable relative time ("3 小時前") and are filled in by
// the http layer.

// UserSummary is the short version of a user embedded in tweets and replies.
type UserSummary struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Account string `json:"account"`
	Avatar  string `json:"avatar"`
}

// PublicUser is a user without password and role.
type PublicUser struct {
	ID           int       `json:"id"`
	Account      string    `json:"account"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Introduction string    `json:"introduction"`
	Avatar       string    `json:"avatar"`
	Cover        string    `json:"cover"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TweetView is a tweet annotated with its owner, its counts and whether the
// requesting user likes it.
type TweetView struct {
	ID          int         `json:"id"`
	UserID      int         `json:"UserId"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	User        UserSummary `json:"User"`
	ReplyCounts int64       `json:"replyCounts"`
	LikeCounts  int64       `json:"likeCounts"`
	IsLiked     bool        `json:"isLiked"`
	Period      string      `json:"period"`
}

// TweetDetail is a single tweet whose createdAt is rendered as a localized string.
type TweetDetail struct {
	TweetView
	CreatedAt string `json:"createdAt"`
}

// LikedTweetView is a tweet in a user's list of likes. Its Period is relative
// to the moment the like was created.
type LikedTweetView struct {
	TweetView
	TweetID   int       `json:"TweetId"`
	LikedDate time.Time `json:"likedDate"`
}

// ReplyTweet is the part of the replied-to tweet shown alongside a reply.
type ReplyTweet struct {
	UserID int         `json:"UserId"`
	User   UserSummary `json:"User"`
}

// ReplyView is a reply annotated with its author and the owner of the replied-to tweet.
type ReplyView struct {
	ID        int         `json:"id"`
	UserID    int         `json:"UserId"`
	TweetID   int         `json:"TweetId"`
	Comment   string      `json:"comment"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	User      UserSummary `json:"User"`
	Tweet     ReplyTweet  `json:"Tweet"`
	Period    string      `json:"period"`
}

// TopUser is an entry of the most followed users list.
type TopUser struct {
	UserSummary
	FollowerCounts int64 `json:"followerCounts"`
	IsFollowed     bool  `json:"isFollowed"`
}

// UserProfile is a user's public data along with its follow counts.
type UserProfile struct {
	PublicUser
	FollowerCounts  int64 `json:"followerCounts"`
	FollowingCounts int64 `json:"followingCounts"`
	IsFollowed      bool  `json:"isFollowed"`
}

// FollowUser is the part of a user shown in follower and following lists.
type FollowUser struct {
	ID           int    `json:"id"`
	Account      string `json:"account"`
	Name         string `json:"name"`
	Avatar       string `json:"avatar"`
	Introduction string `json:"introduction"`
	IsFollowed   bool   `json:"isFollowed"`
}

// FollowingView is a user that is followed by the user whose list is requested.
type FollowingView struct {
	FollowUser
	FollowingID   int       `json:"followingId"`
	FollowingDate time.Time `json:"followingDate"`
}

// FollowerView is a user that follows the user whose list is requested.
type FollowerView struct {
	FollowUser
	FollowerID   int       `json:"followerId"`
	FollowerDate time.Time `json:"followerDate"`
}

// AdminUserView is a user as listed to the administrator.
type AdminUserView struct {
	PublicUser
	Role            string `json:"role"`
	TweetCounts     int64  `json:"tweetCounts"`
	LikeCounts      int64  `json:"likeCounts"`
	FollowerCounts  int64  `json:"followerCounts"`
	FollowingCounts int64  `json:"followingCounts"`
}
