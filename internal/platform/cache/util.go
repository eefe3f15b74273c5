package cache

import (
	"fmt"
	"time"
)

// TTLFunc returns the expiry of an entry written at now.
type TTLFunc func(now time.Time) time.Duration

// UntilDailyReset は次の hh:mm（loc のローカル時刻）までの期間を返す TTLFunc を作成します。
// 取得元の表が毎日決まった時刻に更新される場合、その時刻にキャッシュを失効させます。
func UntilDailyReset(hour, minute int, loc *time.Location) TTLFunc {
	if loc == nil {
		loc = time.UTC
	}
	return func(now time.Time) time.Duration {
		now = now.In(loc)

		// 次のリセット時刻を計算
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)

		// 今日のリセット時刻が既に過ぎている場合は翌日を使用
		if !now.Before(next) {
			next = next.AddDate(0, 0, 1)
		}

		return next.Sub(now)
	}
}

// ParseDailyReset parses "HH:MM" in the named time zone into a TTLFunc.
func ParseDailyReset(clock, zone string) (TTLFunc, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return nil, fmt.Errorf("reset time %q: %w", clock, err)
	}
	loc := time.UTC
	if zone != "" {
		if loc, err = time.LoadLocation(zone); err != nil {
			return nil, fmt.Errorf("time zone %q: %w", zone, err)
		}
	}
	return UntilDailyReset(t.Hour(), t.Minute(), loc), nil
}
