package domain

import (
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	now := time.Now()
	records := []*LogWithOwner{
		{Log: Log{TimeSpent: 6, Mood: MoodHappy, Blockers: "db down", Reviewed: true, Date: now}, OwnerName: "Alice"},
		{Log: Log{TimeSpent: 4, Mood: MoodHappy, Date: now}, OwnerName: "Alice"},
		{Log: Log{TimeSpent: 8, Mood: MoodSad, Blockers: "waiting on review", Date: now}, OwnerName: "Bob"},
	}

	s := Summarize(records)

	if s.TotalLogs != 3 {
		t.Errorf("Expected 3 logs, got %d", s.TotalLogs)
	}
	if s.ReviewedLogs != 1 || s.PendingLogs != 2 {
		t.Errorf("Expected 1 reviewed and 2 pending, got %d and %d", s.ReviewedLogs, s.PendingLogs)
	}
	if s.TotalHours != 18 {
		t.Errorf("Expected 18 total hours, got %v", s.TotalHours)
	}
	if s.AverageHours != 6 {
		t.Errorf("Expected 6 average hours, got %v", s.AverageHours)
	}
	if s.WithBlockers != 2 {
		t.Errorf("Expected 2 logs with blockers, got %d", s.WithBlockers)
	}
	if s.MoodBreakdown[MoodHappy] != 2 || s.MoodBreakdown[MoodSad] != 1 {
		t.Errorf("Unexpected mood breakdown: %v", s.MoodBreakdown)
	}
	if s.DeveloperHours["Alice"] != 10 || s.DeveloperHours["Bob"] != 8 {
		t.Errorf("Unexpected developer hours: %v", s.DeveloperHours)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	if s.TotalLogs != 0 {
		t.Errorf("Expected 0 logs, got %d", s.TotalLogs)
	}
	if s.AverageHours != 0 {
		t.Errorf("Average over no logs should be 0, got %v", s.AverageHours)
	}
}
