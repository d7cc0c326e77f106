package checkout

import (
	"fmt"
	"sync"
	"time"
)

// ExpiredDisplay is the terminal display state of an elapsed countdown.
const ExpiredDisplay = "Expired"

// countdown drives the one-second payment-expiration ticker of a checkout
// session. It only reads the deadline and writes the expired flag and the
// remaining-time display string, it never touches order or proposal state.
type countdown struct {
	deadline int64
	interval time.Duration
	now      func() time.Time
	onExpire func()

	ticker   *time.Ticker
	stopChan chan struct{}
	stopOnce sync.Once

	mtx       sync.RWMutex
	expired   bool
	remaining string
}

func newCountdown(
	deadline time.Time, interval time.Duration, onExpire func(),
) *countdown {
	return &countdown{
		deadline: deadline.Unix(),
		interval: interval,
		now:      time.Now,
		onExpire: onExpire,
		stopChan: make(chan struct{}),
	}
}

// start computes the first remaining-time display and begins ticking.
// Exactly one tick loop runs per countdown.
func (c *countdown) start() {
	if c.tick() {
		return
	}

	c.mtx.Lock()
	c.ticker = time.NewTicker(c.interval)
	c.mtx.Unlock()

	go func() {
		for {
			select {
			case <-c.ticker.C:
				if c.tick() {
					return
				}
			case <-c.stopChan:
				return
			}
		}
	}()
}

// tick returns whether the deadline has passed. Once expired, further ticks
// are no-ops and the flag never reverts.
func (c *countdown) tick() bool {
	c.mtx.Lock()
	if c.expired {
		c.mtx.Unlock()
		return true
	}

	now := c.now().Unix()
	if now > c.deadline {
		c.expired = true
		c.remaining = ExpiredDisplay
		c.mtx.Unlock()

		c.stop()
		if c.onExpire != nil {
			c.onExpire()
		}
		return true
	}

	totalSecs := c.deadline - now
	c.remaining = fmt.Sprintf("%02d:%02d", totalSecs/60, totalSecs%60)
	c.mtx.Unlock()
	return false
}

// stop cancels the ticking, safe to call multiple times and on session
// teardown.
func (c *countdown) stop() {
	c.stopOnce.Do(func() {
		c.mtx.RLock()
		if c.ticker != nil {
			c.ticker.Stop()
		}
		c.mtx.RUnlock()
		close(c.stopChan)
	})
}

func (c *countdown) isExpired() bool {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.expired
}

func (c *countdown) remainingTime() string {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.remaining
}
