package crud

import (
	"time"

	"gorm.io/gorm"

	"simpleTwitter/domain"
)

// The listing queries below compute their counts and flags with correlated subqueries
// instead of loading every reply, like or followship. The requesting user's id is always
// bound as a parameter.

// tweetColumns selects a tweet, its owner, its counts and whether the user bound to the
// placeholder likes it.
const tweetColumns = `tweets.id, tweets.user_id, tweets.description, tweets.created_at, tweets.updated_at,
	users.name AS user_name, users.account AS user_account, users.avatar AS user_avatar,
	(SELECT COUNT(*) FROM replies WHERE replies.tweet_id = tweets.id) AS reply_counts,
	(SELECT COUNT(*) FROM likes WHERE likes.tweet_id = tweets.id) AS like_counts,
	EXISTS(SELECT 1 FROM likes WHERE likes.tweet_id = tweets.id AND likes.user_id = ?) AS is_liked`

// tweetRow is one row of a tweet listing.
type tweetRow struct {
	ID          int
	UserID      int
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserName    string
	UserAccount string
	UserAvatar  string
	ReplyCounts int64
	LikeCounts  int64
	IsLiked     bool
	LikedDate   time.Time
}

func (r *tweetRow) view() domain.TweetView {
	return domain.TweetView{
		ID:          r.ID,
		UserID:      r.UserID,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		User: domain.UserSummary{
			ID:      r.UserID,
			Name:    r.UserName,
			Account: r.UserAccount,
			Avatar:  r.UserAvatar,
		},
		ReplyCounts: r.ReplyCounts,
		LikeCounts:  r.LikeCounts,
		IsLiked:     r.IsLiked,
	}
}

// tweetQuery starts a tweet listing annotated for the given principal.
func tweetQuery(db *gorm.DB, principalID int) *gorm.DB {
	return db.Table("tweets").
		Select(tweetColumns, principalID).
		Joins("JOIN users ON users.id = tweets.user_id")
}

// replyColumns selects a reply, its author and the owner of the replied-to tweet.
const replyColumns = `replies.id, replies.user_id, replies.tweet_id, replies.comment, replies.created_at, replies.updated_at,
	authors.name AS author_name, authors.account AS author_account, authors.avatar AS author_avatar,
	tweets.user_id AS owner_id, owners.name AS owner_name, owners.account AS owner_account, owners.avatar AS owner_avatar`

// replyRow is one row of a reply listing.
type replyRow struct {
	ID            int
	UserID        int
	TweetID       int
	Comment       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	AuthorName    string
	AuthorAccount string
	AuthorAvatar  string
	OwnerID       int
	OwnerName     string
	OwnerAccount  string
	OwnerAvatar   string
}

func (r *replyRow) view() domain.ReplyView {
	return domain.ReplyView{
		ID:        r.ID,
		UserID:    r.UserID,
		TweetID:   r.TweetID,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		User: domain.UserSummary{
			ID:      r.UserID,
			Name:    r.AuthorName,
			Account: r.AuthorAccount,
			Avatar:  r.AuthorAvatar,
		},
		Tweet: domain.ReplyTweet{
			UserID: r.OwnerID,
			User: domain.UserSummary{
				ID:      r.OwnerID,
				Name:    r.OwnerName,
				Account: r.OwnerAccount,
				Avatar:  r.OwnerAvatar,
			},
		},
	}
}

func replyQuery(db *gorm.DB) *gorm.DB {
	return db.Table("replies").
		Select(replyColumns).
		Joins("JOIN users AS authors ON authors.id = replies.user_id").
		Joins("JOIN tweets ON tweets.id = replies.tweet_id").
		Joins("JOIN users AS owners ON owners.id = tweets.user_id")
}

// followColumns selects the user on the other side of a followship, when the
// followship was created and whether the user bound to the placeholder follows them.
const followColumns = `users.id, users.account, users.name, users.avatar, users.introduction,
	followships.created_at AS follow_date,
	EXISTS(SELECT 1 FROM followships AS f WHERE f.following_id = users.id AND f.follower_id = ?) AS is_followed`

// followRow is one row of a follower or following listing.
type followRow struct {
	ID           int
	Account      string
	Name         string
	Avatar       string
	Introduction string
	FollowDate   time.Time
	IsFollowed   bool
}

func (r *followRow) user() domain.FollowUser {
	return domain.FollowUser{
		ID:           r.ID,
		Account:      r.Account,
		Name:         r.Name,
		Avatar:       r.Avatar,
		Introduction: r.Introduction,
		IsFollowed:   r.IsFollowed,
	}
}

// topUserColumns selects a user's summary, their follower count and whether the user
// bound to the placeholder follows them.
const topUserColumns = `users.id, users.name, users.account, users.avatar,
	(SELECT COUNT(*) FROM followships WHERE followships.following_id = users.id) AS follower_counts,
	EXISTS(SELECT 1 FROM followships WHERE followships.following_id = users.id AND followships.follower_id = ?) AS is_followed`

type topUserRow struct {
	ID             int
	Name           string
	Account        string
	Avatar         string
	FollowerCounts int64
	IsFollowed     bool
}

// profileColumns selects a whole user along with its follow counts and whether the
// user bound to the placeholder follows them.
const profileColumns = `users.*,
	(SELECT COUNT(*) FROM followships WHERE followships.following_id = users.id) AS follower_counts,
	(SELECT COUNT(*) FROM followships WHERE followships.follower_id = users.id) AS following_counts,
	EXISTS(SELECT 1 FROM followships WHERE followships.following_id = users.id AND followships.follower_id = ?) AS is_followed`

type profileRow struct {
	domain.User
	FollowerCounts  int64
	FollowingCounts int64
	IsFollowed      bool
}

// adminUserColumns selects a whole user along with its activity counts.
const adminUserColumns = `users.*,
	(SELECT COUNT(*) FROM tweets WHERE tweets.user_id = users.id) AS tweet_counts,
	(SELECT COUNT(*) FROM likes WHERE likes.user_id = users.id) AS like_counts,
	(SELECT COUNT(*) FROM followships WHERE followships.following_id = users.id) AS follower_counts,
	(SELECT COUNT(*) FROM followships WHERE followships.follower_id = users.id) AS following_counts`

type adminUserRow struct {
	domain.User
	TweetCounts     int64
	LikeCounts      int64
	FollowerCounts  int64
	FollowingCounts int64
}
