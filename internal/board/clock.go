package board

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var lastStamp int64

// Now returns a per-process monotonic timestamp in unix milliseconds.
// Concurrent calls and clock steps never produce a value that goes
// backwards, so timestamps are safe to use for insertion ordering.
func Now() int64 {
	for {
		wall := time.Now().UnixMilli()
		prev := atomic.LoadInt64(&lastStamp)
		next := wall
		if next <= prev {
			next = prev + 1
		}
		if atomic.CompareAndSwapInt64(&lastStamp, prev, next) {
			return next
		}
	}
}

// NewSite returns a fresh session identity used to namespace element ids.
func NewSite() string {
	return uuid.NewString()
}

// NewID mints a time-based element id, unique per site because Now is
// strictly increasing within a process.
func NewID(site string) string {
	s := site
	if len(s) > 8 {
		s = s[:8]
	}
	return fmt.Sprintf("el-%s-%d", s, Now())
}
