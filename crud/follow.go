package crud

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"simpleTwitter/domain"
	"simpleTwitter/errs"
)

var (
	errFollowSelf       = errs.Errorf(errs.EINVALID, "You can't follow yourself.")
	errAlreadyFollowing = errs.Errorf(errs.ECONFLICT, "You are already following this user.")
	errNotFollowing     = errs.Errorf(errs.ECONFLICT, "You are not following this user.")
)

// FollowService manages Followships.
// It implements the domain.FollowService interface.
type FollowService struct {
	followValidator
}

// followValidator runs validations on incoming Followship data.
// On success, it passes the data on to followGorm.
// Otherwise, it returns the error of the validation that has failed.
type followValidator struct {
	followGorm
}

// followGorm runs CRUD operations on the database using incoming Followship data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		followValidator{
			followGorm{
				db: db,
			},
		},
	}
}

// Ensure the FollowService struct properly implements the domain.FollowService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.FollowService = &FollowService{}

// Follow makes the principal follow another user. Following oneself is rejected
// before the database is consulted.
func (fv *followValidator) Follow(ctx context.Context, principal *domain.User, followingID int) (*domain.Followship, error) {
	if principal.ID == followingID {
		return nil, errFollowSelf
	}
	existing, err := fv.lookup(ctx, principal.ID, followingID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errAlreadyFollowing
	}
	followship := &domain.Followship{
		FollowerID:  principal.ID,
		FollowingID: followingID,
	}
	if err := fv.followGorm.Create(ctx, followship); err != nil {
		return nil, err
	}
	return followship, nil
}

// Unfollow removes the principal's followship of another user and returns it.
func (fv *followValidator) Unfollow(ctx context.Context, principal *domain.User, followingID int) (*domain.Followship, error) {
	existing, err := fv.lookup(ctx, principal.ID, followingID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errNotFollowing
	}
	if err := fv.followGorm.Delete(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// lookup checks that the followed user exists and fetches the followship at the same time.
// A nil Followship means there is none.
func (fv *followValidator) lookup(ctx context.Context, followerID, followingID int) (*domain.Followship, error) {
	var followship *domain.Followship
	err := concurrently(ctx,
		func(ctx context.Context) error {
			return userExists(ctx, fv.db, followingID)
		},
		func(ctx context.Context) (err error) {
			followship, err = fv.followGorm.ByPair(ctx, followerID, followingID)
			return err
		},
	)
	return followship, err
}

// ByPair retrieves the Followship of a follower and a followed user, or nil if there is none.
func (fg *followGorm) ByPair(ctx context.Context, followerID, followingID int) (*domain.Followship, error) {
	var followship domain.Followship
	db := fg.db.WithContext(ctx).Where("follower_id = ? AND following_id = ?", followerID, followingID)
	err := first(db, &followship)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &followship, nil
}

// Create stores the data from the Followship object in a new database record.
func (fg *followGorm) Create(ctx context.Context, followship *domain.Followship) error {
	err := fg.db.WithContext(ctx).Create(followship).Error
	return duplicate(err, errAlreadyFollowing)
}

// Delete removes a Followship record from the database.
func (fg *followGorm) Delete(ctx context.Context, followship *domain.Followship) error {
	return fg.db.WithContext(ctx).Delete(followship).Error
}
