package bidding

import "time"

// Clock supplies the current time to lifecycle checks
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always reports T
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
