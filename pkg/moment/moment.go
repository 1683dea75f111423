// Package moment provides the date comparison primitives the validation rules
// are written in terms of. Keeping them named ("after", "after-or-equal",
// "before") makes the temporal rules read like the business constraints they
// implement instead of a pile of time.Time method calls.
package moment

import "time"

// After reports whether a is strictly after b.
func After(a, b time.Time) bool { return a.After(b) }

// AfterOrEqual reports whether a is after or equal to b.
func AfterOrEqual(a, b time.Time) bool { return !a.Before(b) }

// Before reports whether a is strictly before b.
func Before(a, b time.Time) bool { return a.Before(b) }

// BeforeOrEqual reports whether a is before or equal to b.
func BeforeOrEqual(a, b time.Time) bool { return !a.After(b) }

// DeltaDays returns t shifted by n calendar days.
func DeltaDays(t time.Time, n int) time.Time { return t.AddDate(0, 0, n) }

// DeltaMonths returns t shifted by n calendar months.
func DeltaMonths(t time.Time, n int) time.Time { return t.AddDate(0, n, 0) }
