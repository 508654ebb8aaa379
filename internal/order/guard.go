package order

import "time"

// DefaultProtectionWindow is how long a fine-grained edit blocks bulk saves.
const DefaultProtectionWindow = 2000 * time.Millisecond

// IsExpired reports whether more than window has elapsed since the guard
// was activated at since.
func IsExpired(since, now time.Time, window time.Duration) bool {
	return now.Sub(since) > window
}

// guard is the update protection flag. It is not a lock: nothing blocks or
// queues on it. Expiry is evaluated lazily on read, there is no timer.
type guard struct {
	window time.Duration
	active bool
	since  time.Time
}

func (g *guard) activate(now time.Time) {
	g.active = true
	g.since = now
}

func (g *guard) deactivate() {
	g.active = false
	g.since = time.Time{}
}

func (g *guard) isActive(now time.Time) bool {
	if !g.active {
		return false
	}
	if IsExpired(g.since, now, g.window) {
		g.deactivate()
		return false
	}
	return true
}
