// ABOUTME: Daily quota accounting for remote API calls
// ABOUTME: Tracks spent units with a midnight-Pacific rollover

package api

import (
	"sync"
	"time"
)

// DefaultDailyQuota is the default daily unit budget granted per project.
const DefaultDailyQuota = 10000

// quotaZone is where the remote resets daily quotas (midnight Pacific).
var quotaZone = func() *time.Location {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		return time.UTC
	}

	return loc
}()

// QuotaCounter tracks units spent against the daily budget. Spending is
// charged per call, before the call is issued: the remote bills failed
// requests too.
type QuotaCounter struct {
	mu    sync.Mutex
	limit int
	used  int
	day   string // YYYY-MM-DD in quotaZone; usage resets when it changes
	now   func() time.Time
}

// NewQuotaCounter creates a counter with the given daily limit.
// Non-positive limits fall back to DefaultDailyQuota.
func NewQuotaCounter(limit int) *QuotaCounter {
	if limit <= 0 {
		limit = DefaultDailyQuota
	}

	c := &QuotaCounter{limit: limit, now: time.Now}
	c.day = c.today()

	return c
}

func (c *QuotaCounter) today() string {
	return c.now().In(quotaZone).Format("2006-01-02")
}

func (c *QuotaCounter) rollover() {
	if today := c.today(); today != c.day {
		c.day = today
		c.used = 0
	}
}

// Spend charges cost units. It reports false, charging nothing, when the
// charge would exceed the daily limit.
func (c *QuotaCounter) Spend(cost int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollover()

	if c.used+cost > c.limit {
		return false
	}

	c.used += cost

	return true
}

// Remaining returns the unspent units for today.
func (c *QuotaCounter) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollover()

	return c.limit - c.used
}

// Used returns the units spent today.
func (c *QuotaCounter) Used() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollover()

	return c.used
}

// Limit returns the daily budget.
func (c *QuotaCounter) Limit() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.limit
}
