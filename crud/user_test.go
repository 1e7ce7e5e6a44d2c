package crud

import (
	"context"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simpleTwitter/domain"
	"simpleTwitter/errs"
)

func TestSignUp(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	user, err := s.User.SignUp(ctx, &domain.SignUp{
		Account:       "alice",
		Name:          "Alice",
		Email:         "  Alice@Example.com ",
		Password:      "password",
		CheckPassword: "password",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "password", user.Password)

	found, err := s.User.Authenticate(ctx, "alice", "password")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestSignUpValidation(t *testing.T) {
	s := newTestServices(t)

	tests := []struct {
		name string
		su   domain.SignUp
	}{
		{"passwords differ", domain.SignUp{Account: "a", Name: "A", Email: "a@example.com", Password: "one", CheckPassword: "two"}},
		{"name too long", domain.SignUp{Account: "a", Name: strings.Repeat("x", 51), Email: "a@example.com", Password: "pw", CheckPassword: "pw"}},
		{"missing account", domain.SignUp{Name: "A", Email: "a@example.com", Password: "pw", CheckPassword: "pw"}},
		{"invalid email", domain.SignUp{Account: "a", Name: "A", Email: "not-an-email", Password: "pw", CheckPassword: "pw"}},
		{"password too long", domain.SignUp{Account: "a", Name: "A", Email: "a@example.com", Password: strings.Repeat("p", 70), CheckPassword: strings.Repeat("p", 70)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.User.SignUp(context.Background(), &tt.su)
			assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
		})
	}

	// The longest password that still fits into bcrypt along with the pepper "pepper".
	longest := strings.Repeat("p", 72-len("pepper"))
	_, err := s.User.SignUp(context.Background(), &domain.SignUp{
		Account: "c", Name: "C", Email: "c@example.com", Password: longest, CheckPassword: longest,
	})
	require.NoError(t, err)
	_, err = s.User.Authenticate(context.Background(), "c", longest)
	assert.NoError(t, err)

	// Fifty characters are fine, even when they are not ascii.
	_, err = s.User.SignUp(context.Background(), &domain.SignUp{
		Account: "b", Name: strings.Repeat("名", 50), Email: "b@example.com", Password: "pw", CheckPassword: "pw",
	})
	assert.NoError(t, err)
}

func TestSignUpConflicts(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	signUp(t, s, "alice")

	_, err := s.User.SignUp(ctx, &domain.SignUp{Account: "alice", Name: "A", Email: "other@example.com", Password: "pw", CheckPassword: "pw"})
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))
	assert.Equal(t, errAccountTaken.Message, errs.ErrorMessage(err))

	_, err = s.User.SignUp(ctx, &domain.SignUp{Account: "other", Name: "A", Email: "alice@example.com", Password: "pw", CheckPassword: "pw"})
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))
	assert.Equal(t, errEmailTaken.Message, errs.ErrorMessage(err))

	// The account is reported when both are taken.
	_, err = s.User.SignUp(ctx, &domain.SignUp{Account: "alice", Name: "A", Email: "alice@example.com", Password: "pw", CheckPassword: "pw"})
	assert.Equal(t, errAccountTaken.Message, errs.ErrorMessage(err))
}

func TestAuthenticate(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	signUp(t, s, "alice")

	_, err := s.User.Authenticate(ctx, "alice", "wrong")
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))

	_, err = s.User.Authenticate(ctx, "nobody", "password")
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))
}

func TestUpdateSettings(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	alice := signUp(t, s, "alice")
	bob := signUp(t, s, "bob")

	upd := &domain.SettingsUpdate{Account: "alice2", Name: "Alice", Email: "alice2@example.com", Password: "new", CheckPassword: "new"}
	user, err := s.User.UpdateSettings(ctx, alice.ID, alice, upd)
	require.NoError(t, err)
	assert.Equal(t, "alice2", user.Account)

	_, err = s.User.Authenticate(ctx, "alice2", "new")
	assert.NoError(t, err)

	// Keeping one's own account and email is not a conflict.
	_, err = s.User.UpdateSettings(ctx, alice.ID, alice, upd)
	assert.NoError(t, err)

	// Someone else's account is.
	_, err = s.User.UpdateSettings(ctx, alice.ID, alice, &domain.SettingsUpdate{
		Account: "bob", Name: "Alice", Email: "alice2@example.com", Password: "new", CheckPassword: "new",
	})
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))

	tooLong := strings.Repeat("p", 70)
	_, err = s.User.UpdateSettings(ctx, alice.ID, alice, &domain.SettingsUpdate{
		Account: "alice2", Name: "Alice", Email: "alice2@example.com", Password: tooLong, CheckPassword: tooLong,
	})
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	_, err = s.User.UpdateSettings(ctx, 999, alice, upd)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	_, err = s.User.UpdateSettings(ctx, bob.ID, alice, upd)
	assert.Equal(t, errs.EFORBIDDEN, errs.ErrorCode(err))
}

func TestUpdateSettingsOfOthersIsForbiddenWhateverThePayload(t *testing.T) {
	s := newTestServices(t)
	alice := signUp(t, s, "alice")
	bob := signUp(t, s, "bob")

	payloads := []*domain.SettingsUpdate{
		{},
		{Account: "x", Name: "x", Email: "x@example.com", Password: "a", CheckPassword: "b"},
		{Account: "alice", Name: strings.Repeat("x", 60), Email: "bad", Password: "a", CheckPassword: "a"},
		{Account: "y", Name: "y", Email: "y@example.com", Password: "a", CheckPassword: "a"},
	}
	for _, upd := range payloads {
		_, err := s.User.UpdateSettings(context.Background(), bob.ID, alice, upd)
		assert.Equal(t, errs.EFORBIDDEN, errs.ErrorCode(err))
	}
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	alice := signUp(t, s, "alice")
	bob := signUp(t, s, "bob")

	user, err := s.User.UpdateProfile(ctx, alice.ID, alice, &domain.ProfileUpdate{
		Name:         "Alice",
		Introduction: "hello",
		Avatar:       &multipart.FileHeader{Filename: "avatar.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "http://images.test/avatar.png", user.Avatar)
	assert.Empty(t, user.Cover)

	// Without uploads the images stay as they are.
	user, err = s.User.UpdateProfile(ctx, alice.ID, alice, &domain.ProfileUpdate{Name: "Alice A."})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", user.Name)
	assert.Equal(t, "http://images.test/avatar.png", user.Avatar)

	_, err = s.User.UpdateProfile(ctx, alice.ID, alice, &domain.ProfileUpdate{Name: ""})
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	_, err = s.User.UpdateProfile(ctx, alice.ID, alice, &domain.ProfileUpdate{Name: "A", Introduction: strings.Repeat("x", 161)})
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	_, err = s.User.UpdateProfile(ctx, 999, alice, &domain.ProfileUpdate{Name: "A"})
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	_, err = s.User.UpdateProfile(ctx, bob.ID, alice, &domain.ProfileUpdate{Name: "A"})
	assert.Equal(t, errs.EFORBIDDEN, errs.ErrorCode(err))
}

func TestUpdateProfileRemovesOrphanedImages(t *testing.T) {
	images := &stubImages{}
	s := newTestServicesWithImages(t, images)
	ctx := context.Background()
	alice := signUp(t, s, "alice")

	_, err := s.User.UpdateProfile(ctx, alice.ID, alice, &domain.ProfileUpdate{
		Name:   "Alice",
		Avatar: &multipart.FileHeader{Filename: "avatar.png"},
		Cover:  &multipart.FileHeader{Filename: "broken.png"},
	})
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	assert.Equal(t, []string{"http://images.test/avatar.png"}, images.deleted)

	// The stored profile is untouched.
	user, err := s.User.ByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, user.Avatar)
	assert.Empty(t, user.Cover)

	// Images of a saved profile are kept.
	images.deleted = nil
	_, err = s.User.UpdateProfile(ctx, alice.ID, alice, &domain.ProfileUpdate{
		Name:   "Alice",
		Avatar: &multipart.FileHeader{Filename: "avatar.png"},
	})
	require.NoError(t, err)
	assert.Empty(t, images.deleted)
}

func TestTopFollowed(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	require.NoError(t, s.User.EnsureRoot(ctx, "rootpw"))

	users := make([]*domain.User, 0, 12)
	for _, account := range []string{"u0", "u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8", "u9", "u10", "u11"} {
		users = append(users, signUp(t, s, account))
	}
	// u3 has two followers, u5 one.
	_, err := s.Follow.Follow(ctx, users[0], users[3].ID)
	require.NoError(t, err)
	_, err = s.Follow.Follow(ctx, users[1], users[3].ID)
	require.NoError(t, err)
	_, err = s.Follow.Follow(ctx, users[1], users[5].ID)
	require.NoError(t, err)

	top, err := s.User.TopFollowed(ctx, users[0], 0)
	require.NoError(t, err)
	require.Len(t, top, TopFollowedLimit)
	assert.Equal(t, users[3].ID, top[0].ID)
	assert.EqualValues(t, 2, top[0].FollowerCounts)
	assert.True(t, top[0].IsFollowed)
	assert.Equal(t, users[5].ID, top[1].ID)
	assert.False(t, top[1].IsFollowed)
	for _, u := range top {
		assert.NotEqual(t, domain.RootAccount, u.Account)
	}
}

func TestProfile(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	alice := signUp(t, s, "alice")
	bob := signUp(t, s, "bob")
	_, err := s.Follow.Follow(ctx, alice, bob.ID)
	require.NoError(t, err)

	profile, err := s.User.Profile(ctx, bob.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "bob", profile.Account)
	assert.EqualValues(t, 1, profile.FollowerCounts)
	assert.EqualValues(t, 0, profile.FollowingCounts)
	assert.True(t, profile.IsFollowed)

	profile, err = s.User.Profile(ctx, alice.ID, bob)
	require.NoError(t, err)
	assert.EqualValues(t, 1, profile.FollowingCounts)
	assert.False(t, profile.IsFollowed)

	_, err = s.User.Profile(ctx, 999, alice)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestFollowersAndFollowings(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	alice := signUp(t, s, "alice")
	bob := signUp(t, s, "bob")
	carol := signUp(t, s, "carol")

	f1, err := s.Follow.Follow(ctx, alice, carol.ID)
	require.NoError(t, err)
	f2, err := s.Follow.Follow(ctx, bob, carol.ID)
	require.NoError(t, err)
	setCreatedAt(t, s, &domain.Followship{}, f1.ID, epoch)
	setCreatedAt(t, s, &domain.Followship{}, f2.ID, epoch.Add(time.Hour))
	_, err = s.Follow.Follow(ctx, carol, bob.ID)
	require.NoError(t, err)

	followers, err := s.User.Followers(ctx, carol.ID, alice)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, bob.ID, followers[0].FollowerID)
	assert.True(t, epoch.Add(time.Hour).Equal(followers[0].FollowerDate))
	assert.False(t, followers[0].IsFollowed)
	assert.Equal(t, alice.ID, followers[1].FollowerID)

	followings, err := s.User.Followings(ctx, alice.ID, alice)
	require.NoError(t, err)
	require.Len(t, followings, 1)
	assert.Equal(t, carol.ID, followings[0].FollowingID)
	assert.True(t, followings[0].IsFollowed)

	_, err = s.User.Followers(ctx, 999, alice)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	_, err = s.User.Followings(ctx, 999, alice)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestAllAndEnsureRoot(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	require.NoError(t, s.User.EnsureRoot(ctx, "rootpw"))
	// A second call leaves the existing account alone.
	require.NoError(t, s.User.EnsureRoot(ctx, "other"))

	root, err := s.User.Authenticate(ctx, domain.RootAccount, "rootpw")
	require.NoError(t, err)
	assert.True(t, root.IsRoot())

	alice := signUp(t, s, "alice")
	tweet(t, s, alice, "hello", epoch)

	users, err := s.User.All(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Account)
	assert.EqualValues(t, 1, users[0].TweetCounts)
	assert.Equal(t, domain.RoleRoot, users[1].Role)
}
