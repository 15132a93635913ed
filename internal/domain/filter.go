package domain

import (
	"strings"
	"time"
)

// FilterSpec holds the optional manager-side filter criteria as they
// arrive from the request. Empty strings impose no constraint.
type FilterSpec struct {
	Date     string `json:"date"`
	Blockers string `json:"blockers"`
	DevName  string `json:"dev_name"`
	Tags     string `json:"tags"`
}

// Predicate is a composed boolean test over annotated log records.
// Criteria combine with AND; a predicate built twice from the same
// spec behaves identically.
type Predicate struct {
	dayStart time.Time
	dayEnd   time.Time
	hasDay   bool
	blockers string
	devName  string
	tags     []string
}

// ParseDay interprets a calendar-day filter value in the server's
// local time zone.
func ParseDay(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, time.Local)
}

// Compose builds the predicate for the given criteria. An invalid
// date value is reported; every other criterion is free text.
func Compose(spec FilterSpec) (Predicate, error) {
	var p Predicate

	if spec.Date != "" {
		day, err := ParseDay(spec.Date)
		if err != nil {
			return Predicate{}, err
		}
		p.hasDay = true
		p.dayStart = day
		p.dayEnd = day.AddDate(0, 0, 1)
	}

	p.blockers = strings.ToLower(strings.TrimSpace(spec.Blockers))
	p.devName = strings.ToLower(strings.TrimSpace(spec.DevName))

	for _, label := range strings.Split(spec.Tags, ",") {
		label = strings.ToLower(strings.TrimSpace(label))
		if label != "" {
			p.tags = append(p.tags, label)
		}
	}

	return p, nil
}

// IsEmpty reports whether the predicate constrains nothing
func (p Predicate) IsEmpty() bool {
	return !p.hasDay && p.blockers == "" && p.devName == "" && len(p.tags) == 0
}

// Matches evaluates the predicate against one annotated record.
// The date window is half-open: [day 00:00, next day 00:00).
func (p Predicate) Matches(rec LogWithOwner) bool {
	if p.hasDay {
		if rec.Date.Before(p.dayStart) || !rec.Date.Before(p.dayEnd) {
			return false
		}
	}

	if p.blockers != "" {
		if !strings.Contains(strings.ToLower(rec.Blockers), p.blockers) {
			return false
		}
	}

	if p.devName != "" {
		if !strings.Contains(strings.ToLower(rec.OwnerName), p.devName) {
			return false
		}
	}

	if len(p.tags) > 0 {
		if !p.intersectsTags(rec.Tags) {
			return false
		}
	}

	return true
}

// intersectsTags reports whether the record shares at least one label
// with the filter set, case-insensitively.
func (p Predicate) intersectsTags(tags []string) bool {
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		for _, want := range p.tags {
			if tag == want {
				return true
			}
		}
	}
	return false
}
