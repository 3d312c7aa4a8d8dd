// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g. postgres) inside this
// directory; no business logic here.
package repository

import "time"

// DayStat is one calendar day's upload aggregate.
type DayStat struct {
	Day   time.Time
	Count int
	Bytes int64
}
