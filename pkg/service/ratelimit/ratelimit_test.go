package ratelimit_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/lwalder/veille/pkg/service/ratelimit"
)

func TestAllowRollingWindow(t *testing.T) {
	t.Run("allows up to the limit then rejects", func(t *testing.T) {
		now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
		l := ratelimit.New(ratelimit.WithClock(func() time.Time { return now }))

		for i := 0; i < 3; i++ {
			gt.Bool(t, l.Allow("k", time.Hour, 3)).True()
		}
		gt.Bool(t, l.Allow("k", time.Hour, 3)).False()
	})

	t.Run("rejected requests still consume a slot", func(t *testing.T) {
		now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
		l := ratelimit.New(ratelimit.WithClock(func() time.Time { return now }))

		gt.Bool(t, l.Allow("k", time.Hour, 1)).True()
		gt.Bool(t, l.Allow("k", time.Hour, 1)).False()

		// Window not yet expired: the over-limit attempts kept counting,
		// so the key stays rejected.
		now = now.Add(30 * time.Minute)
		gt.Bool(t, l.Allow("k", time.Hour, 1)).False()
	})

	t.Run("resets relative to first request after expiry", func(t *testing.T) {
		now := time.Date(2025, 7, 1, 10, 30, 0, 0, time.UTC)
		l := ratelimit.New(ratelimit.WithClock(func() time.Time { return now }))

		gt.Bool(t, l.Allow("k", time.Hour, 1)).True()
		gt.Bool(t, l.Allow("k", time.Hour, 1)).False()

		now = now.Add(time.Hour + time.Minute)
		gt.Bool(t, l.Allow("k", time.Hour, 1)).True()
		gt.Bool(t, l.Allow("k", time.Hour, 1)).False()
	})

	t.Run("keys are independent", func(t *testing.T) {
		now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
		l := ratelimit.New(ratelimit.WithClock(func() time.Time { return now }))

		gt.Bool(t, l.Allow("a", time.Hour, 1)).True()
		gt.Bool(t, l.Allow("a", time.Hour, 1)).False()
		gt.Bool(t, l.Allow("b", time.Hour, 1)).True()
	})
}

func TestAllowFixedBucket(t *testing.T) {
	t.Run("caps requests within one bucket", func(t *testing.T) {
		now := time.Date(2025, 7, 1, 10, 10, 0, 0, time.UTC)
		l := ratelimit.New(ratelimit.WithClock(func() time.Time { return now }))

		gt.Bool(t, l.AllowBucket("src", time.Hour, 2)).True()
		gt.Bool(t, l.AllowBucket("src", time.Hour, 2)).True()
		gt.Bool(t, l.AllowBucket("src", time.Hour, 2)).False()
	})

	t.Run("rejected requests do not consume a slot", func(t *testing.T) {
		now := time.Date(2025, 7, 1, 10, 10, 0, 0, time.UTC)
		l := ratelimit.New(ratelimit.WithClock(func() time.Time { return now }))

		gt.Bool(t, l.AllowBucket("src", time.Hour, 1)).True()
		gt.Bool(t, l.AllowBucket("src", time.Hour, 1)).False()
		gt.Bool(t, l.AllowBucket("src", time.Hour, 1)).False()
	})

	t.Run("resets on the bucket boundary, not relative to first use", func(t *testing.T) {
		// 10:50, ten minutes before the hour boundary
		now := time.Date(2025, 7, 1, 10, 50, 0, 0, time.UTC)
		l := ratelimit.New(ratelimit.WithClock(func() time.Time { return now }))

		gt.Bool(t, l.AllowBucket("src", time.Hour, 1)).True()
		gt.Bool(t, l.AllowBucket("src", time.Hour, 1)).False()

		// Twenty minutes later the hour bucket has rolled over even though
		// less than a full hour elapsed since first use. A rolling window
		// would still reject here.
		now = now.Add(20 * time.Minute)
		gt.Bool(t, l.AllowBucket("src", time.Hour, 1)).True()
	})
}
