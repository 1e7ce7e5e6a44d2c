package crud

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"simpleTwitter/domain"
	"simpleTwitter/errs"
)

var (
	errAlreadyLiked = errs.Errorf(errs.ECONFLICT, "You have already liked this tweet.")
	errNotLiked     = errs.Errorf(errs.ECONFLICT, "You haven't liked this tweet.")
)

// LikeService manages Likes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeValidator
}

// likeValidator runs validations on incoming Like data.
// On success, it passes the data on to likeGorm.
// Otherwise, it returns the error of the validation that has failed.
type likeValidator struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming Like data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeValidator{
			likeGorm{
				db: db,
			},
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// Like makes the principal like a tweet. The tweet must exist, and the principal
// must not have liked it yet.
func (lv *likeValidator) Like(ctx context.Context, principal *domain.User, tweetID int) (*domain.Like, error) {
	existing, err := lv.lookup(ctx, principal.ID, tweetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errAlreadyLiked
	}
	like := &domain.Like{
		UserID:  principal.ID,
		TweetID: tweetID,
	}
	if err := lv.likeGorm.Create(ctx, like); err != nil {
		return nil, err
	}
	return like, nil
}

// Unlike removes the principal's like of a tweet and returns the removed Like.
func (lv *likeValidator) Unlike(ctx context.Context, principal *domain.User, tweetID int) (*domain.Like, error) {
	existing, err := lv.lookup(ctx, principal.ID, tweetID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errNotLiked
	}
	if err := lv.likeGorm.Delete(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// lookup checks that the tweet exists and fetches the user's like of it at the same time.
// A nil Like means the user has not liked the tweet.
func (lv *likeValidator) lookup(ctx context.Context, userID, tweetID int) (*domain.Like, error) {
	var like *domain.Like
	err := concurrently(ctx,
		func(ctx context.Context) error {
			return tweetExists(ctx, lv.db, tweetID)
		},
		func(ctx context.Context) (err error) {
			like, err = lv.likeGorm.ByUserAndTweet(ctx, userID, tweetID)
			return err
		},
	)
	return like, err
}

// ByUserAndTweet retrieves the Like of a user on a tweet, or nil if there is none.
func (lg *likeGorm) ByUserAndTweet(ctx context.Context, userID, tweetID int) (*domain.Like, error) {
	var like domain.Like
	db := lg.db.WithContext(ctx).Where("user_id = ? AND tweet_id = ?", userID, tweetID)
	err := first(db, &like)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &like, nil
}

// Create stores the data from the Like object in a new database record.
func (lg *likeGorm) Create(ctx context.Context, like *domain.Like) error {
	err := lg.db.WithContext(ctx).Create(like).Error
	return duplicate(err, errAlreadyLiked)
}

// Delete removes a Like record from the database.
func (lg *likeGorm) Delete(ctx context.Context, like *domain.Like) error {
	return lg.db.WithContext(ctx).Delete(like).Error
}
