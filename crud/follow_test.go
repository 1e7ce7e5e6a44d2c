package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simpleTwitter/errs"
)

func TestFollowAndUnfollow(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	alice := signUp(t, s, "alice")
	bob := signUp(t, s, "bob")

	f, err := s.Follow.Follow(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, f.FollowerID)
	assert.Equal(t, bob.ID, f.FollowingID)

	_, err = s.Follow.Follow(ctx, alice, bob.ID)
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))

	// Followships are directed.
	_, err = s.Follow.Follow(ctx, bob, alice.ID)
	require.NoError(t, err)

	removed, err := s.Follow.Unfollow(ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, removed.ID)

	_, err = s.Follow.Unfollow(ctx, alice, bob.ID)
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))

	profile, err := s.User.Profile(ctx, bob.ID, alice)
	require.NoError(t, err)
	assert.Zero(t, profile.FollowerCounts)
	assert.EqualValues(t, 1, profile.FollowingCounts)
}

func TestFollowRejections(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	alice := signUp(t, s, "alice")

	_, err := s.Follow.Follow(ctx, alice, alice.ID)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	_, err = s.Follow.Follow(ctx, alice, 999)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	_, err = s.Follow.Unfollow(ctx, alice, 999)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}
