// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// Clock supplies the current time to business flows
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return UTCNow()
}

// FixedClock always returns the same instant
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T.UTC()
}

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowRFC3339 returns the current UTC time in RFC3339 format
func UTCNowRFC3339() string {
	return UTCNow().Format(time.RFC3339)
}

// FormatRFC3339 renders t as an RFC3339 UTC timestamp
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
