package domain

import (
	"context"
	"time"
)

// Followship represents a self-referential many-to-may relationship between two users.
// A Followship is created when one user decides to follow another user.
// The FollowerID is the ID of the user that follows, and the FollowingID is the ID of the
// user that is being followed. There is at most one Followship per ordered pair, and
// nobody follows themselves.
type Followship struct {
	ID          int `json:"id"`
	FollowerID  int `json:"followerId" gorm:"notNull;uniqueIndex:idx_followships_pair"`
	FollowingID int `json:"followingId" gorm:"notNull;uniqueIndex:idx_followships_pair;index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FollowService is a set of methods to manipulate and work with the Followship model.
type FollowService interface {
	Follow(ctx context.Context, principal *User, followingID int) (*Followship, error)
	Unfollow(ctx context.Context, principal *User, followingID int) (*Followship, error)
}
