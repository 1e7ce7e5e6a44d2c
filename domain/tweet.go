package domain

import (
	"context"
	"time"
)

// Tweet is a short post owned by a User. Its Replies and Likes are only used by
// gorm to manage the associations and never show up in a response.
type Tweet struct {
	ID          int     `json:"id"`
	UserID      int     `json:"UserId" gorm:"notNull;index"`
	User        User    `json:"-"`
	Description string  `json:"description"`
	Replies     []Reply `json:"-"`
	Likes       []Like  `json:"-"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TweetService is a set of methods to manipulate and work with the Tweet model.
type TweetService interface {
	Create(ctx context.Context, principal *User, description string) (*Tweet, error)
	List(ctx context.Context, principal *User) ([]TweetView, error)
	Detail(ctx context.Context, id int, principal *User) (*TweetView, error)
	ByUser(ctx context.Context, userID int, principal *User) ([]TweetView, error)
	LikedByUser(ctx context.Context, userID int, principal *User) ([]LikedTweetView, error)
	Delete(ctx context.Context, id int) error
}
