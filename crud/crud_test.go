package crud

import (
	"context"
	"mime/multipart"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"simpleTwitter/domain"
	"simpleTwitter/errs"
)

// stubImages pretends to store uploads and hands out predictable urls.
// Files named "broken.*" fail to upload.
type stubImages struct {
	mu      sync.Mutex
	deleted []string
}

func (si *stubImages) Upload(ctx context.Context, ownerID int, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", nil
	}
	if strings.HasPrefix(fh.Filename, "broken.") {
		return "", errs.Errorf(errs.EINVALID, "Image %s is broken.", fh.Filename)
	}
	return "http://images.test/" + fh.Filename, nil
}

func (si *stubImages) Delete(ctx context.Context, url string) error {
	si.mu.Lock()
	defer si.mu.Unlock()
	si.deleted = append(si.deleted, url)
	return nil
}

// newTestServices returns every crud service backed by a fresh in-memory database.
func newTestServices(t *testing.T) *Services {
	t.Helper()
	return newTestServicesWithImages(t, &stubImages{})
}

// newTestServicesWithImages is newTestServices with the given image store.
func newTestServicesWithImages(t *testing.T, images domain.ImageStore) *Services {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to :memory: opens its own database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Tweet{},
		&domain.Reply{},
		&domain.Like{},
		&domain.Followship{},
	))

	s, err := NewServices(db,
		WithUser("pepper", bcrypt.MinCost, images),
		WithTweet(),
		WithReply(),
		WithLike(),
		WithFollow(),
	)
	require.NoError(t, err)
	return s
}

// signUp creates a regular user with the password "password".
func signUp(t *testing.T, s *Services, account string) *domain.User {
	t.Helper()
	user, err := s.User.SignUp(context.Background(), &domain.SignUp{
		Account:       account,
		Name:          account,
		Email:         account + "@example.com",
		Password:      "password",
		CheckPassword: "password",
	})
	require.NoError(t, err)
	return user
}

// tweet creates a tweet of user and sets its creation time.
func tweet(t *testing.T, s *Services, user *domain.User, description string, createdAt time.Time) *domain.Tweet {
	t.Helper()
	tw, err := s.Tweet.Create(context.Background(), user, description)
	require.NoError(t, err)
	setCreatedAt(t, s, &domain.Tweet{}, tw.ID, createdAt)
	tw.CreatedAt = createdAt
	return tw
}

// setCreatedAt overwrites the creation time of a record.
func setCreatedAt(t *testing.T, s *Services, model interface{}, id int, createdAt time.Time) {
	t.Helper()
	err := s.db.Model(model).Where("id = ?", id).UpdateColumn("created_at", createdAt).Error
	require.NoError(t, err)
}

var epoch = time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)
