package crud

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"simpleTwitter/domain"
	"simpleTwitter/errs"
)

// ReplyService manages Replies.
// It implements the domain.ReplyService interface.
type ReplyService struct {
	replyValidator
}

// replyValidator runs validations on incoming Reply data.
// On success, it passes the data on to replyGorm.
// Otherwise, it returns the error of the validation that has failed.
type replyValidator struct {
	replyGorm
}

// replyGorm runs CRUD operations on the database using incoming Reply data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type replyGorm struct {
	db *gorm.DB
}

// NewReplyService returns an instance of ReplyService.
func NewReplyService(db *gorm.DB) *ReplyService {
	return &ReplyService{
		replyValidator{
			replyGorm{
				db: db,
			},
		},
	}
}

// Ensure the ReplyService struct properly implements the domain.ReplyService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.ReplyService = &ReplyService{}

// Create runs validations needed for creating new Reply database records.
// The principal and the tweet are looked up concurrently; a missing principal is
// reported before a missing tweet.
func (rv *replyValidator) Create(ctx context.Context, principal *domain.User, tweetID int, comment string) (*domain.Reply, error) {
	if comment == "" {
		return nil, errs.Errorf(errs.EINVALID, "A comment is required.")
	}
	err := concurrently(ctx,
		func(ctx context.Context) error {
			return userExists(ctx, rv.db, principal.ID)
		},
		func(ctx context.Context) error {
			return tweetExists(ctx, rv.db, tweetID)
		},
	)
	if err != nil {
		return nil, err
	}
	reply := &domain.Reply{
		UserID:  principal.ID,
		TweetID: tweetID,
		Comment: comment,
	}
	if err := rv.replyGorm.Create(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// ByTweet returns the replies to the tweet with the given id, newest first.
func (rg *replyGorm) ByTweet(ctx context.Context, tweetID int) ([]domain.ReplyView, error) {
	var rows []replyRow
	err := concurrently(ctx,
		func(ctx context.Context) error {
			return tweetExists(ctx, rg.db, tweetID)
		},
		func(ctx context.Context) error {
			return replyQuery(rg.db.WithContext(ctx)).
				Where("replies.tweet_id = ?", tweetID).
				Order("replies.created_at DESC, replies.id DESC").
				Scan(&rows).Error
		},
	)
	if err != nil {
		return nil, err
	}
	return replyViews(rows), nil
}

// ByUser returns the replies written by the user with the given id, newest first.
func (rg *replyGorm) ByUser(ctx context.Context, userID int) ([]domain.ReplyView, error) {
	var rows []replyRow
	err := concurrently(ctx,
		func(ctx context.Context) error {
			return userExists(ctx, rg.db, userID)
		},
		func(ctx context.Context) error {
			return replyQuery(rg.db.WithContext(ctx)).
				Where("replies.user_id = ?", userID).
				Order("replies.created_at DESC, replies.id DESC").
				Scan(&rows).Error
		},
	)
	if err != nil {
		return nil, err
	}
	return replyViews(rows), nil
}

// Create stores the data from the Reply object in a new database record.
func (rg *replyGorm) Create(ctx context.Context, reply *domain.Reply) error {
	return rg.db.WithContext(ctx).Omit(clause.Associations).Create(reply).Error
}

func replyViews(rows []replyRow) []domain.ReplyView {
	replies := make([]domain.ReplyView, 0, len(rows))
	for _, r := range rows {
		replies = append(replies, r.view())
	}
	return replies
}
