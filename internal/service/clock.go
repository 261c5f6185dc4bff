package service

import (
	"time"

	"github.com/jodolyekim/Dotori/internal/model"
)

// Clock 按业务时区计算 usage_date
type Clock struct {
	now func() time.Time
	loc *time.Location
}

// NewClock now 为 nil 时使用 time.Now
func NewClock(loc *time.Location, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{now: now, loc: loc}
}

func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today 当前业务日期，格式 YYYY-MM-DD
func (c *Clock) Today() string {
	return c.Now().Format(model.UsageDateLayout)
}

// LastDays 最近 n 天（含今天），按时间升序
func (c *Clock) LastDays(n int) []string {
	if n < 1 {
		n = 1
	}
	now := c.Now()
	dates := make([]string, n)
	for i := 0; i < n; i++ {
		dates[i] = now.AddDate(0, 0, i-(n-1)).Format(model.UsageDateLayout)
	}
	return dates
}

// DaysAgo n 天前的业务日期
func (c *Clock) DaysAgo(n int) string {
	return c.Now().AddDate(0, 0, -n).Format(model.UsageDateLayout)
}

// StartOfDaysAgo n 天前业务日期的零点
func (c *Clock) StartOfDaysAgo(n int) time.Time {
	d := c.Now().AddDate(0, 0, -n)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, c.loc)
}
