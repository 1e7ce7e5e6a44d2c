package crud

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"simpleTwitter/domain"
	"simpleTwitter/errs"
)

// TweetService manages Tweets.
// It implements the domain.TweetService interface.
type TweetService struct {
	tweetValidator
}

// tweetValidator runs validations on incoming Tweet data.
// On success, it passes the data on to tweetGorm.
// Otherwise, it returns the error of the validation that has failed.
type tweetValidator struct {
	tweetGorm
}

// tweetGorm runs CRUD operations on the database using incoming Tweet data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type tweetGorm struct {
	db *gorm.DB
}

// NewTweetService returns an instance of TweetService.
func NewTweetService(db *gorm.DB) *TweetService {
	return &TweetService{
		tweetValidator{
			tweetGorm{
				db: db,
			},
		},
	}
}

// Ensure the TweetService struct properly implements the domain.TweetService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.TweetService = &TweetService{}

// Create runs validations needed for creating new Tweet database records.
// The principal may have been deleted since their token was issued, which yields ENOTFOUND.
func (tv *tweetValidator) Create(ctx context.Context, principal *domain.User, description string) (*domain.Tweet, error) {
	tweet := &domain.Tweet{
		UserID:      principal.ID,
		Description: description,
	}
	err := runTweetValFns(tweet,
		tv.descriptionRequired)
	if err != nil {
		return nil, err
	}
	if err := userExists(ctx, tv.db, tweet.UserID); err != nil {
		return nil, err
	}
	if err := tv.tweetGorm.Create(ctx, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

// Delete removes a tweet along with its replies and likes.
func (tv *tweetValidator) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return errs.IdInvalid
	}
	if err := tweetExists(ctx, tv.db, id); err != nil {
		return err
	}
	return tv.tweetGorm.Delete(ctx, id)
}

// runTweetValFns runs any number of functions of type tweetValFn on the passed in Tweet object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runTweetValFns(tweet *domain.Tweet, fns ...tweetValFn) error {
	for _, fn := range fns {
		if err := fn(tweet); err != nil {
			return err
		}
	}
	return nil
}

// A tweetValFn is any function that takes in a pointer to a domain.Tweet object and returns an error.
type tweetValFn = func(tweet *domain.Tweet) error

// descriptionRequired makes sure that the Tweet's description is not empty.
func (tv *tweetValidator) descriptionRequired(tweet *domain.Tweet) error {
	if tweet.Description == "" {
		return errs.Errorf(errs.EINVALID, "A description is required.")
	}
	return nil
}

// List returns every tweet, newest first.
func (tg *tweetGorm) List(ctx context.Context, principal *domain.User) ([]domain.TweetView, error) {
	var rows []tweetRow
	err := tweetQuery(tg.db.WithContext(ctx), principal.ID).
		Order("tweets.created_at DESC, tweets.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return tweetViews(rows), nil
}

// Detail returns a single tweet.
func (tg *tweetGorm) Detail(ctx context.Context, id int, principal *domain.User) (*domain.TweetView, error) {
	var rows []tweetRow
	err := tweetQuery(tg.db.WithContext(ctx), principal.ID).
		Where("tweets.id = ?", id).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errTweetNotFound
	}
	view := rows[0].view()
	return &view, nil
}

// ByUser returns the tweets of the user with the given id, newest first.
func (tg *tweetGorm) ByUser(ctx context.Context, userID int, principal *domain.User) ([]domain.TweetView, error) {
	var rows []tweetRow
	err := concurrently(ctx,
		func(ctx context.Context) error {
			return userExists(ctx, tg.db, userID)
		},
		func(ctx context.Context) error {
			return tweetQuery(tg.db.WithContext(ctx), principal.ID).
				Where("tweets.user_id = ?", userID).
				Order("tweets.created_at DESC, tweets.id DESC").
				Scan(&rows).Error
		},
	)
	if err != nil {
		return nil, err
	}
	return tweetViews(rows), nil
}

// LikedByUser returns the tweets liked by the user with the given id, ordered by
// when they were liked, most recent first.
func (tg *tweetGorm) LikedByUser(ctx context.Context, userID int, principal *domain.User) ([]domain.LikedTweetView, error) {
	var rows []tweetRow
	err := concurrently(ctx,
		func(ctx context.Context) error {
			return userExists(ctx, tg.db, userID)
		},
		func(ctx context.Context) error {
			return tg.db.WithContext(ctx).
				Table("tweets").
				Select(tweetColumns+", likes.created_at AS liked_date", principal.ID).
				Joins("JOIN users ON users.id = tweets.user_id").
				Joins("JOIN likes ON likes.tweet_id = tweets.id AND likes.user_id = ?", userID).
				Order("likes.created_at DESC, likes.id DESC").
				Scan(&rows).Error
		},
	)
	if err != nil {
		return nil, err
	}
	tweets := make([]domain.LikedTweetView, 0, len(rows))
	for _, r := range rows {
		tweets = append(tweets, domain.LikedTweetView{
			TweetView: r.view(),
			TweetID:   r.ID,
			LikedDate: r.LikedDate,
		})
	}
	return tweets, nil
}

// Create stores the data from the Tweet object in a new database record.
func (tg *tweetGorm) Create(ctx context.Context, tweet *domain.Tweet) error {
	return tg.db.WithContext(ctx).Omit(clause.Associations).Create(tweet).Error
}

// Delete deletes the tweet with the given id along with its replies and likes.
func (tg *tweetGorm) Delete(ctx context.Context, id int) error {
	return tg.db.WithContext(ctx).Select("Replies", "Likes").Delete(&domain.Tweet{ID: id}).Error
}

func tweetViews(rows []tweetRow) []domain.TweetView {
	tweets := make([]domain.TweetView, 0, len(rows))
	for _, r := range rows {
		tweets = append(tweets, r.view())
	}
	return tweets
}
