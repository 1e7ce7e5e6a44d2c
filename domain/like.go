package domain

import (
	"context"
	"time"
)

// Like represents a many-to-many relationship between a User and a Tweet.
// A Like is created when a user decides to like a tweet. It's destroyed when
// a user decides to unlike a previously liked tweet, or when the tweet gets deleted.
// A user can like a given tweet at most once.
type Like struct {
	ID      int `json:"id"`
	UserID  int `json:"UserId" gorm:"notNull;uniqueIndex:idx_likes_user_tweet"`
	TweetID int `json:"TweetId" gorm:"notNull;uniqueIndex:idx_likes_user_tweet;index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LikeService is a set of methods to manipulate and work with the Like model.
type LikeService interface {
	Like(ctx context.Context, principal *User, tweetID int) (*Like, error)
	Unlike(ctx context.Context, principal *User, tweetID int) (*Like, error)
}
