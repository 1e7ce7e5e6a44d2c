package domain

import (
	"context"
	"mime/multipart"
	"time"
)

const (
	// RoleUser is the role of every account created through sign-up.
	RoleUser = "user"
	// RoleRoot is the role of the single administrator account.
	RoleRoot = "root"
	// RootAccount is the reserved account name of the administrator.
	RootAccount = "root"

	// NameMaxLength is the maximum number of characters of a user's name.
	NameMaxLength = 50
	// IntroductionMaxLength is the maximum number of characters of a user's introduction.
	IntroductionMaxLength = 160
)

// User represents a registered account. The Password field only ever holds the bcrypt
// hash of the user's password, and it is never serialized.
type User struct {
	ID           int    `json:"id"`
	Account      string `json:"account" gorm:"notNull;uniqueIndex"`
	Email        string `json:"email" gorm:"notNull;uniqueIndex"`
	Name         string `json:"name" gorm:"size:50"`
	Password     string `json:"-" gorm:"notNull"`
	Introduction string `json:"introduction" gorm:"size:160"`
	Avatar       string `json:"avatar"`
	Cover        string `json:"cover"`
	Role         string `json:"-" gorm:"notNull;default:user"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsRoot is the one predicate deciding whether a user is the administrator.
// Both authorization gates and both sign-in paths rely on it.
func (u *User) IsRoot() bool {
	return u.Role == RoleRoot
}

// Public returns the user's data without its password and role.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Account:      u.Account,
		Email:        u.Email,
		Name:         u.Name,
		Introduction: u.Introduction,
		Avatar:       u.Avatar,
		Cover:        u.Cover,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// Summary returns the short version of the user embedded in tweets and replies.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:      u.ID,
		Name:    u.Name,
		Account: u.Account,
		Avatar:  u.Avatar,
	}
}

// SignUp holds the data submitted to create a new account.
type SignUp struct {
	Account       string `json:"account"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	CheckPassword string `json:"checkPassword"`
}

// SettingsUpdate holds the data submitted to change a user's account settings.
type SettingsUpdate struct {
	Account       string `json:"account"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	CheckPassword string `json:"checkPassword"`
}

// ProfileUpdate holds the data submitted to change a user's profile. Avatar and Cover
// are optional uploads; a nil upload keeps the current image.
type ProfileUpdate struct {
	Name         string
	Introduction string
	Avatar       *multipart.FileHeader
	Cover        *multipart.FileHeader
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	ByID(ctx context.Context, id int) (*User, error)
	Authenticate(ctx context.Context, account, password string) (*User, error)
	SignUp(ctx context.Context, su *SignUp) (*User, error)
	UpdateSettings(ctx context.Context, id int, principal *User, upd *SettingsUpdate) (*User, error)
	UpdateProfile(ctx context.Context, id int, principal *User, upd *ProfileUpdate) (*User, error)
	TopFollowed(ctx context.Context, principal *User, limit int) ([]TopUser, error)
	Profile(ctx context.Context, id int, principal *User) (*UserProfile, error)
	Followings(ctx context.Context, id int, principal *User) ([]FollowingView, error)
	Followers(ctx context.Context, id int, principal *User) ([]FollowerView, error)
	All(ctx context.Context) ([]AdminUserView, error)
	EnsureRoot(ctx context.Context, password string) error
}
