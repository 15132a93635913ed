package domain

import (
	"time"
)

// Summary aggregates a set of log records for the manager dashboard
type Summary struct {
	TotalLogs      int                `json:"total_logs"`
	ReviewedLogs   int                `json:"reviewed_logs"`
	PendingLogs    int                `json:"pending_logs"`
	TotalHours     float64            `json:"total_hours"`
	AverageHours   float64            `json:"average_hours"`
	WithBlockers   int                `json:"with_blockers"`
	MoodBreakdown  map[Mood]int       `json:"mood_breakdown"`
	DeveloperHours map[string]float64 `json:"developer_hours"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

// Summarize folds the given records into aggregate figures. Records
// are expected to be pre-filtered; the summary describes exactly what
// it was given.
func Summarize(records []*LogWithOwner) *Summary {
	s := &Summary{
		MoodBreakdown:  make(map[Mood]int),
		DeveloperHours: make(map[string]float64),
		GeneratedAt:    time.Now(),
	}

	for _, rec := range records {
		s.TotalLogs++
		s.TotalHours += rec.TimeSpent
		if rec.Reviewed {
			s.ReviewedLogs++
		}
		if rec.Blockers != "" {
			s.WithBlockers++
		}
		s.MoodBreakdown[rec.Mood]++
		s.DeveloperHours[rec.OwnerName] += rec.TimeSpent
	}

	s.PendingLogs = s.TotalLogs - s.ReviewedLogs
	if s.TotalLogs > 0 {
		s.AverageHours = s.TotalHours / float64(s.TotalLogs)
	}

	return s
}
