package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedFormatter(locale string, now time.Time) *Formatter {
	f := New(locale, time.UTC)
	f.Now = func() time.Time { return now }
	return f
}

func TestPeriod(t *testing.T) {
	now := time.Date(2022, 6, 15, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		ago  time.Duration
		zhTW string
		en   string
	}{
		{10 * time.Second, "幾秒前", "a few seconds ago"},
		{60 * time.Second, "1 分鐘前", "a minute ago"},
		{5 * time.Minute, "5 分鐘前", "5 minutes ago"},
		{50 * time.Minute, "1 小時前", "an hour ago"},
		{3 * time.Hour, "3 小時前", "3 hours ago"},
		{30 * time.Hour, "1 天前", "a day ago"},
		{3 * day, "3 天前", "3 days ago"},
		{40 * day, "1 個月前", "a month ago"},
		{100 * day, "3 個月前", "3 months ago"},
		{400 * day, "1 年前", "a year ago"},
		{800 * day, "2 年前", "2 years ago"},
	}
	zh := fixedFormatter(ZhTW, now)
	en := fixedFormatter(En, now)
	for _, tt := range tests {
		t.Run(tt.en, func(t *testing.T) {
			assert.Equal(t, tt.zhTW, zh.Period(now.Add(-tt.ago)))
			assert.Equal(t, tt.en, en.Period(now.Add(-tt.ago)))
		})
	}
}

func TestPeriodFuture(t *testing.T) {
	now := time.Date(2022, 6, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "3 小時內", fixedFormatter(ZhTW, now).Period(now.Add(3*time.Hour)))
	assert.Equal(t, "in 3 hours", fixedFormatter(En, now).Period(now.Add(3*time.Hour)))
}

func TestDisplay(t *testing.T) {
	afternoon := time.Date(2021, 10, 5, 15, 4, 0, 0, time.UTC)
	midnight := time.Date(2021, 1, 9, 0, 30, 0, 0, time.UTC)

	zh := New(ZhTW, time.UTC)
	assert.Equal(t, "下午3:04．2021年10月5日", zh.Display(afternoon))
	assert.Equal(t, "上午12:30．2021年1月9日", zh.Display(midnight))

	en := New(En, time.UTC)
	assert.Equal(t, "3:04 PM．October 5, 2021", en.Display(afternoon))
}

func TestDisplayUsesLocation(t *testing.T) {
	taipei := time.FixedZone("CST", 8*60*60)
	f := New(ZhTW, taipei)
	assert.Equal(t, "上午7:04．2021年10月6日", f.Display(time.Date(2021, 10, 5, 23, 4, 0, 0, time.UTC)))
}

func TestUnknownLocaleFallsBack(t *testing.T) {
	now := time.Date(2022, 6, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "3 小時前", fixedFormatter("fr", now).Period(now.Add(-3*time.Hour)))
}
