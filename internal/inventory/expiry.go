// Package inventory holds the client-side business rules of the stock
// screens: expiration bucketing, pagination, form validation and the
// local snapshot patches applied after a successful mutation.
package inventory

import (
	"time"

	"github.com/atinyakov/medstock/internal/models"
)

// Bucket classifies a medicine by the number of days until it expires.
type Bucket int

const (
	NoDate Bucket = iota
	Expired
	Within7
	Within30
	Within90
	Within180
	Later
)

// Buckets lists every bucket in report order.
var Buckets = []Bucket{Expired, Within7, Within30, Within90, Within180, Later, NoDate}

func (b Bucket) String() string {
	switch b {
	case Expired:
		return "expired"
	case Within7:
		return "within 7 days"
	case Within30:
		return "within 30 days"
	case Within90:
		return "within 90 days"
	case Within180:
		return "within 180 days"
	case Later:
		return "later"
	default:
		return "no date"
	}
}

// Classify returns the bucket of a medicine expiring on expire, seen from today.
// Boundaries are inclusive on the upper end: exactly 7 days away is Within7.
func Classify(expire, today models.Date) Bucket {
	if expire.IsZero() {
		return NoDate
	}
	d := expire.DaysUntil(today)
	switch {
	case d < 0:
		return Expired
	case d <= 7:
		return Within7
	case d <= 30:
		return Within30
	case d <= 90:
		return Within90
	case d <= 180:
		return Within180
	default:
		return Later
	}
}

// ExpiryReport partitions a medicine list into expiry buckets.
type ExpiryReport struct {
	Today   models.Date
	Buckets map[Bucket][]models.Medicine
}

// BucketMedicines assigns every medicine to exactly one bucket, preserving
// the input order inside each bucket.
func BucketMedicines(meds []models.Medicine, today models.Date) ExpiryReport {
	r := ExpiryReport{Today: today, Buckets: make(map[Bucket][]models.Medicine, len(Buckets))}
	for _, m := range meds {
		b := Classify(m.Expire, today)
		r.Buckets[b] = append(r.Buckets[b], m)
	}
	return r
}

// Count returns the number of medicines in b.
func (r ExpiryReport) Count(b Bucket) int {
	return len(r.Buckets[b])
}

// Total returns the number of classified medicines.
func (r ExpiryReport) Total() int {
	n := 0
	for _, meds := range r.Buckets {
		n += len(meds)
	}
	return n
}

// Today returns the current calendar date in the local zone.
func Today() models.Date {
	return models.DateOf(time.Now())
}
