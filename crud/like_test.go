package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simpleTwitter/errs"
)

func TestLikeAndUnlike(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	alice := signUp(t, s, "alice")
	bob := signUp(t, s, "bob")
	tw := tweet(t, s, alice, "hello", epoch)

	like, err := s.Like.Like(ctx, bob, tw.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, like.UserID)
	assert.Equal(t, tw.ID, like.TweetID)

	_, err = s.Like.Like(ctx, bob, tw.ID)
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))

	// Liking one's own tweet is allowed.
	_, err = s.Like.Like(ctx, alice, tw.ID)
	require.NoError(t, err)

	removed, err := s.Like.Unlike(ctx, bob, tw.ID)
	require.NoError(t, err)
	assert.Equal(t, like.ID, removed.ID)

	_, err = s.Like.Unlike(ctx, bob, tw.ID)
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))

	view, err := s.Tweet.Detail(ctx, tw.ID, bob)
	require.NoError(t, err)
	assert.EqualValues(t, 1, view.LikeCounts)
	assert.False(t, view.IsLiked)

	// Liking again after unliking works.
	_, err = s.Like.Like(ctx, bob, tw.ID)
	assert.NoError(t, err)
}

func TestLikeMissingTweet(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	alice := signUp(t, s, "alice")

	_, err := s.Like.Like(ctx, alice, 999)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	_, err = s.Like.Unlike(ctx, alice, 999)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}
