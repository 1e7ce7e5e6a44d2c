package domain

import (
	"context"
	"time"
)

// Reply is a comment a User leaves on a Tweet.
type Reply struct {
	ID      int    `json:"id"`
	UserID  int    `json:"UserId" gorm:"notNull;index"`
	User    User   `json:"-"`
	TweetID int    `json:"TweetId" gorm:"notNull;index"`
	Tweet   Tweet  `json:"-"`
	Comment string `json:"comment"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReplyService is a set of methods to manipulate and work with the Reply model.
type ReplyService interface {
	Create(ctx context.Context, principal *User, tweetID int, comment string) (*Reply, error)
	ByTweet(ctx context.Context, tweetID int) ([]ReplyView, error)
	ByUser(ctx context.Context, userID int) ([]ReplyView, error)
}
