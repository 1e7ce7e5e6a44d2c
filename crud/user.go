package crud

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"simpleTwitter/domain"
	"simpleTwitter/errs"
)

// TopFollowedLimit is the number of users returned by TopFollowed when no limit is given.
const TopFollowedLimit = 10

// bcryptMaxBytes is the longest input bcrypt accepts.
const bcryptMaxBytes = 72

var (
	errBadCredentials = errs.Errorf(errs.EUNAUTHORIZED, "Account or password is wrong.")
	errAccountTaken   = errs.Errorf(errs.ECONFLICT, "The account already exists.")
	errEmailTaken     = errs.Errorf(errs.ECONFLICT, "The email address already exists.")
	errNotYourUser    = errs.Errorf(errs.EFORBIDDEN, "You can't modify other user's settings.")
)

// UserService manages Users. It also contains the part of the authentication system
// that checks credentials and hashes passwords. Tokens are issued by the auth package.
// It implements the domain.UserService interface.
type UserService struct {
	userValidator
}

// userValidator runs validations on incoming User data.
// On success, it passes the data on to userGorm.
// Otherwise, it returns the error of the validation that has failed.
type userValidator struct {
	pepper     string
	cost       int
	emailRegex *regexp.Regexp
	images     domain.ImageStore
	userGorm
}

// userGorm runs CRUD operations on the database using incoming User data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type userGorm struct {
	db *gorm.DB
}

// NewUserService returns an instance of UserService. A cost of 0 hashes passwords with
// bcrypt.DefaultCost. Uploaded avatars and covers are handed to images.
func NewUserService(db *gorm.DB, pepper string, cost int, images domain.ImageStore) *UserService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserService{
		userValidator{
			pepper:     pepper,
			cost:       cost,
			emailRegex: regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,16}$`),
			images:     images,
			userGorm: userGorm{
				db: db,
			},
		},
	}
}

// Ensure the UserService struct properly implements the domain.UserService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.UserService = &UserService{}

// credentials is the data shared by a sign-up and a settings update.
type credentials struct {
	// ID is the user being changed, or 0 for a new user.
	ID            int
	Account       string
	Name          string
	Email         string
	Password      string
	CheckPassword string
}

// Authenticate checks a submitted account and password for existence and correctness.
// Both an unknown account and a wrong password yield the same error.
func (uv *userValidator) Authenticate(ctx context.Context, account, password string) (*domain.User, error) {
	// Look for a user database record containing the submitted account.
	found, err := uv.userGorm.ByAccount(ctx, strings.TrimSpace(account))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}

	// Append the pepper to the submitted password and compare it to the stored hash.
	err = bcrypt.CompareHashAndPassword([]byte(found.Password), []byte(password+uv.pepper))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	return found, nil
}

// SignUp runs validations needed for creating new User database records.
// The account is checked before the email, so a request reusing both reports the account.
func (uv *userValidator) SignUp(ctx context.Context, su *domain.SignUp) (*domain.User, error) {
	c := &credentials{
		Account:       su.Account,
		Name:          su.Name,
		Email:         su.Email,
		Password:      su.Password,
		CheckPassword: su.CheckPassword,
	}
	err := runCredentialsValFns(c,
		uv.credentialsRequired,
		uv.passwordsMatch,
		uv.passwordMaxLength,
		uv.nameMaxLength,
		uv.emailNormalize,
		uv.emailFormat)
	if err != nil {
		return nil, err
	}
	if err := uv.availability(ctx, c); err != nil {
		return nil, err
	}
	if err := uv.passwordBcrypt(c); err != nil {
		return nil, err
	}

	user := &domain.User{
		Account:  c.Account,
		Name:     c.Name,
		Email:    c.Email,
		Password: c.Password,
		Role:     domain.RoleUser,
	}
	if err := uv.userGorm.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateSettings changes a user's account, name, email and password.
// Only the user themselves may change their settings. The user is looked up first,
// so an unknown id reports ENOTFOUND, and someone else's id reports EFORBIDDEN no
// matter what was submitted. Only then is the submitted data validated.
func (uv *userValidator) UpdateSettings(ctx context.Context, id int, principal *domain.User, upd *domain.SettingsUpdate) (*domain.User, error) {
	user, err := uv.owned(ctx, id, principal)
	if err != nil {
		return nil, err
	}

	c := &credentials{
		ID:            user.ID,
		Account:       upd.Account,
		Name:          upd.Name,
		Email:         upd.Email,
		Password:      upd.Password,
		CheckPassword: upd.CheckPassword,
	}
	err = runCredentialsValFns(c,
		uv.credentialsRequired,
		uv.nameMaxLength,
		uv.passwordsMatch,
		uv.passwordMaxLength,
		uv.emailNormalize,
		uv.emailFormat)
	if err != nil {
		return nil, err
	}
	if err := uv.availability(ctx, c); err != nil {
		return nil, err
	}
	if err := uv.passwordBcrypt(c); err != nil {
		return nil, err
	}

	user.Account = c.Account
	user.Name = c.Name
	user.Email = c.Email
	user.Password = c.Password
	if err := uv.userGorm.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes a user's name and introduction, and replaces the avatar and
// cover when new ones are uploaded. Lookup and ownership are checked the same way as
// in UpdateSettings, and images are only uploaded once everything else is valid.
func (uv *userValidator) UpdateProfile(ctx context.Context, id int, principal *domain.User, upd *domain.ProfileUpdate) (*domain.User, error) {
	user, err := uv.owned(ctx, id, principal)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(upd.Name)
	if name == "" {
		return nil, errs.Errorf(errs.EINVALID, "A name is required.")
	}
	if utf8.RuneCountInString(name) > domain.NameMaxLength {
		return nil, errs.Errorf(errs.EINVALID, "The name can't be longer than %d characters.", domain.NameMaxLength)
	}
	if utf8.RuneCountInString(upd.Introduction) > domain.IntroductionMaxLength {
		return nil, errs.Errorf(errs.EINVALID, "The introduction can't be longer than %d characters.", domain.IntroductionMaxLength)
	}

	var avatar, cover string
	err = concurrently(ctx,
		func(ctx context.Context) (err error) {
			avatar, err = uv.images.Upload(ctx, user.ID, upd.Avatar)
			return err
		},
		func(ctx context.Context) (err error) {
			cover, err = uv.images.Upload(ctx, user.ID, upd.Cover)
			return err
		},
	)
	if err != nil {
		uv.discard(ctx, avatar, cover)
		return nil, err
	}

	user.Name = name
	user.Introduction = upd.Introduction
	if avatar != "" {
		user.Avatar = avatar
	}
	if cover != "" {
		user.Cover = cover
	}
	if err := uv.userGorm.Update(ctx, user); err != nil {
		uv.discard(ctx, avatar, cover)
		return nil, err
	}
	return user, nil
}

// discard removes uploaded images that didn't make it into a saved profile.
func (uv *userValidator) discard(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := uv.images.Delete(ctx, url); err != nil {
			logrus.WithError(err).WithField("url", url).Warn("could not remove orphaned image")
		}
	}
}

// owned fetches the user with the given id and makes sure it is the principal.
// The fetched record's id is compared, so a missing user is reported first.
func (uv *userValidator) owned(ctx context.Context, id int, principal *domain.User) (*domain.User, error) {
	user, err := userByID(ctx, uv.db, id)
	if err != nil {
		return nil, err
	}
	if user.ID != principal.ID {
		return nil, errNotYourUser
	}
	return user, nil
}

// availability checks the account and the email of new credentials concurrently.
func (uv *userValidator) availability(ctx context.Context, c *credentials) error {
	var accountTaken, emailTaken bool
	err := concurrently(ctx,
		func(ctx context.Context) (err error) {
			accountTaken, err = uv.userGorm.taken(ctx, "account", c.Account, c.ID)
			return err
		},
		func(ctx context.Context) (err error) {
			emailTaken, err = uv.userGorm.taken(ctx, "email", c.Email, c.ID)
			return err
		},
	)
	if err != nil {
		return err
	}
	if accountTaken {
		return errAccountTaken
	}
	if emailTaken {
		return errEmailTaken
	}
	return nil
}

// EnsureRoot creates the administrator account unless it already exists.
func (uv *userValidator) EnsureRoot(ctx context.Context, password string) error {
	_, err := uv.userGorm.ByAccount(ctx, domain.RootAccount)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if password == "" {
		return errs.Errorf(errs.EINVALID, "A root password is required.")
	}
	c := &credentials{Password: password}
	if err := runCredentialsValFns(c, uv.passwordMaxLength, uv.passwordBcrypt); err != nil {
		return err
	}
	return uv.userGorm.Create(ctx, &domain.User{
		Account:  domain.RootAccount,
		Name:     domain.RootAccount,
		Email:    domain.RootAccount + "@example.com",
		Password: c.Password,
		Role:     domain.RoleRoot,
	})
}

// runCredentialsValFns runs any number of functions of type credentialsValFn on the passed in credentials.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runCredentialsValFns(c *credentials, fns ...credentialsValFn) error {
	for _, fn := range fns {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

// A credentialsValFn is any function that takes in a pointer to credentials and returns an error.
type credentialsValFn func(c *credentials) error

// credentialsRequired makes sure that no field has been left empty.
func (uv *userValidator) credentialsRequired(c *credentials) error {
	c.Account = strings.TrimSpace(c.Account)
	c.Name = strings.TrimSpace(c.Name)
	if c.Account == "" || c.Name == "" || strings.TrimSpace(c.Email) == "" || c.Password == "" || c.CheckPassword == "" {
		return errs.Errorf(errs.EINVALID, "All fields are required.")
	}
	return nil
}

// passwordsMatch makes sure that the password has been typed the same way twice.
func (uv *userValidator) passwordsMatch(c *credentials) error {
	if c.Password != c.CheckPassword {
		return errs.Errorf(errs.EINVALID, "The passwords do not match.")
	}
	return nil
}

// passwordMaxLength makes sure that the peppered password fits into bcrypt's 72 bytes.
func (uv *userValidator) passwordMaxLength(c *credentials) error {
	if limit := bcryptMaxBytes - len(uv.pepper); len(c.Password) > limit {
		return errs.Errorf(errs.EINVALID, "The password can't be longer than %d bytes.", limit)
	}
	return nil
}

// nameMaxLength makes sure that the name is not longer than NameMaxLength characters.
func (uv *userValidator) nameMaxLength(c *credentials) error {
	if utf8.RuneCountInString(c.Name) > domain.NameMaxLength {
		return errs.Errorf(errs.EINVALID, "The name can't be longer than %d characters.", domain.NameMaxLength)
	}
	return nil
}

// emailNormalize converts the email to all lowercase and trims its whitespaces.
func (uv *userValidator) emailNormalize(c *credentials) error {
	c.Email = strings.ToLower(c.Email)
	c.Email = strings.TrimSpace(c.Email)
	return nil
}

// emailFormat makes sure that a provided email address matches a predefined regex pattern.
func (uv *userValidator) emailFormat(c *credentials) error {
	if !uv.emailRegex.MatchString(c.Email) {
		return errs.Errorf(errs.EINVALID, "The email address is invalid.")
	}
	return nil
}

// passwordBcrypt hashes the password with a predefined pepper and replaces
// the plain text password with the hash.
func (uv *userValidator) passwordBcrypt(c *credentials) error {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(c.Password+uv.pepper), uv.cost)
	if err != nil {
		return err
	}
	c.Password = string(hashedBytes)
	c.CheckPassword = ""
	return nil
}

// ByID retrieves a User database record by ID.
func (ug *userGorm) ByID(ctx context.Context, id int) (*domain.User, error) {
	return userByID(ctx, ug.db, id)
}

// ByAccount retrieves a User database record by Account.
func (ug *userGorm) ByAccount(ctx context.Context, account string) (*domain.User, error) {
	var user domain.User
	db := ug.db.WithContext(ctx).Where("account = ?", account)
	err := first(db, &user)
	return &user, err
}

// taken reports whether a user other than exceptID already uses value in column.
func (ug *userGorm) taken(ctx context.Context, column, value string, exceptID int) (bool, error) {
	var n int64
	err := ug.db.WithContext(ctx).
		Model(&domain.User{}).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Where("id <> ?", exceptID).
		Count(&n).Error
	return n > 0, err
}

// Create stores the data from the User object in a new database record.
func (ug *userGorm) Create(ctx context.Context, user *domain.User) error {
	err := ug.db.WithContext(ctx).Create(user).Error
	return duplicate(err, errs.Errorf(errs.ECONFLICT, "The account or email address already exists."))
}

// Update saves changes to an existing user record in the database.
func (ug *userGorm) Update(ctx context.Context, user *domain.User) error {
	err := ug.db.WithContext(ctx).Save(user).Error
	return duplicate(err, errs.Errorf(errs.ECONFLICT, "The account or email address already exists."))
}

// TopFollowed returns up to limit regular users with the most followers.
func (ug *userGorm) TopFollowed(ctx context.Context, principal *domain.User, limit int) ([]domain.TopUser, error) {
	if limit <= 0 {
		limit = TopFollowedLimit
	}
	var rows []topUserRow
	err := ug.db.WithContext(ctx).
		Table("users").
		Select(topUserColumns, principal.ID).
		Where("users.role = ?", domain.RoleUser).
		Order("follower_counts DESC, users.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	users := make([]domain.TopUser, 0, len(rows))
	for _, r := range rows {
		users = append(users, domain.TopUser{
			UserSummary: domain.UserSummary{
				ID:      r.ID,
				Name:    r.Name,
				Account: r.Account,
				Avatar:  r.Avatar,
			},
			FollowerCounts: r.FollowerCounts,
			IsFollowed:     r.IsFollowed,
		})
	}
	return users, nil
}

// Profile returns a user along with its follow counts.
func (ug *userGorm) Profile(ctx context.Context, id int, principal *domain.User) (*domain.UserProfile, error) {
	var rows []profileRow
	err := ug.db.WithContext(ctx).
		Table("users").
		Select(profileColumns, principal.ID).
		Where("users.id = ?", id).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errUserNotFound
	}
	r := rows[0]
	return &domain.UserProfile{
		PublicUser:      r.User.Public(),
		FollowerCounts:  r.FollowerCounts,
		FollowingCounts: r.FollowingCounts,
		IsFollowed:      r.IsFollowed,
	}, nil
}

// Followings returns the users followed by the user with the given id,
// most recently followed first.
func (ug *userGorm) Followings(ctx context.Context, id int, principal *domain.User) ([]domain.FollowingView, error) {
	var rows []followRow
	err := concurrently(ctx,
		func(ctx context.Context) error {
			return userExists(ctx, ug.db, id)
		},
		func(ctx context.Context) error {
			return ug.db.WithContext(ctx).
				Table("followships").
				Select(followColumns, principal.ID).
				Joins("JOIN users ON users.id = followships.following_id").
				Where("followships.follower_id = ?", id).
				Order("followships.created_at DESC, followships.id DESC").
				Scan(&rows).Error
		},
	)
	if err != nil {
		return nil, err
	}
	followings := make([]domain.FollowingView, 0, len(rows))
	for _, r := range rows {
		followings = append(followings, domain.FollowingView{
			FollowUser:    r.user(),
			FollowingID:   r.ID,
			FollowingDate: r.FollowDate,
		})
	}
	return followings, nil
}

// Followers returns the users following the user with the given id,
// most recent follower first.
func (ug *userGorm) Followers(ctx context.Context, id int, principal *domain.User) ([]domain.FollowerView, error) {
	var rows []followRow
	err := concurrently(ctx,
		func(ctx context.Context) error {
			return userExists(ctx, ug.db, id)
		},
		func(ctx context.Context) error {
			return ug.db.WithContext(ctx).
				Table("followships").
				Select(followColumns, principal.ID).
				Joins("JOIN users ON users.id = followships.follower_id").
				Where("followships.following_id = ?", id).
				Order("followships.created_at DESC, followships.id DESC").
				Scan(&rows).Error
		},
	)
	if err != nil {
		return nil, err
	}
	followers := make([]domain.FollowerView, 0, len(rows))
	for _, r := range rows {
		followers = append(followers, domain.FollowerView{
			FollowUser:   r.user(),
			FollowerID:   r.ID,
			FollowerDate: r.FollowDate,
		})
	}
	return followers, nil
}

// All returns every user along with their activity counts, most active first.
func (ug *userGorm) All(ctx context.Context) ([]domain.AdminUserView, error) {
	var rows []adminUserRow
	err := ug.db.WithContext(ctx).
		Table("users").
		Select(adminUserColumns).
		Order("tweet_counts DESC, users.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	users := make([]domain.AdminUserView, 0, len(rows))
	for _, r := range rows {
		users = append(users, domain.AdminUserView{
			PublicUser:      r.User.Public(),
			Role:            r.Role,
			TweetCounts:     r.TweetCounts,
			LikeCounts:      r.LikeCounts,
			FollowerCounts:  r.FollowerCounts,
			FollowingCounts: r.FollowingCounts,
		})
	}
	return users, nil
}
