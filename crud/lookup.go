package crud

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"simpleTwitter/domain"
	"simpleTwitter/errs"
)

var (
	errUserNotFound  = errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
	errTweetNotFound = errs.Errorf(errs.ENOTFOUND, "The tweet does not exist.")
)

// concurrently runs independent lookups at the same time and waits for all of them.
// It returns the first error in argument order rather than the first one to occur,
// so the caller decides which failure gets reported.
func concurrently(ctx context.Context, fns ...func(ctx context.Context) error) error {
	results := make([]error, len(fns))
	var g errgroup.Group
	for i, fn := range fns {
		i, fn := i, fn
		g.Go(func() error {
			results[i] = fn(ctx)
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range results {
		if err != nil {
			return err
		}
	}
	return nil
}

// userByID retrieves a User database record by ID.
func userByID(ctx context.Context, db *gorm.DB, id int) (*domain.User, error) {
	var user domain.User
	err := first(db.WithContext(ctx).Where("id = ?", id), &user)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// userExists returns ENOTFOUND unless a user with the given id exists.
func userExists(ctx context.Context, db *gorm.DB, id int) error {
	return exists(ctx, db, &domain.User{}, id, errUserNotFound)
}

// tweetExists returns ENOTFOUND unless a tweet with the given id exists.
func tweetExists(ctx context.Context, db *gorm.DB, id int) error {
	return exists(ctx, db, &domain.Tweet{}, id, errTweetNotFound)
}

// exists counts the records of model with the given id and returns notFound if there are none.
func exists(ctx context.Context, db *gorm.DB, model interface{}, id int, notFound error) error {
	var n int64
	err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// first is a helper for getting the first database record that matches a given query.
func first(db *gorm.DB, dst interface{}) error {
	return db.First(dst).Error
}

// duplicate turns a unique constraint violation into the passed in conflict error.
// The services check for duplicates before writing, so this only fires when two
// requests race each other.
func duplicate(err error, conflict error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict
	}
	return err
}
