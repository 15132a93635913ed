package domain

import (
	"time"
)

// Mood represents how the developer's day went
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodNeutral Mood = "neutral"
	MoodSad     Mood = "sad"
)

// IsValid reports whether the mood is one of the known labels
func (m Mood) IsValid() bool {
	return m == MoodHappy || m == MoodNeutral || m == MoodSad
}

// Log represents one developer's daily work-log entry
type Log struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Date      time.Time `json:"date"`
	Tasks     string    `json:"tasks"`
	TimeSpent float64   `json:"time_spent"`
	Mood      Mood      `json:"mood"`
	Blockers  string    `json:"blockers"`
	Tags      []string  `json:"tags"`
	Reviewed  bool      `json:"reviewed"`
	Feedback  string    `json:"feedback"`
}

// LogWithOwner is a log annotated with the owner's display name,
// as returned by the manager-side listing.
type LogWithOwner struct {
	Log
	OwnerName string `json:"owner_name"`
}

// NewLog creates a new log entry owned by ownerID. Date falls back to
// the creation time when the caller did not supply one.
func NewLog(id, ownerID string, date time.Time, tasks string, timeSpent float64, mood Mood, blockers string, tags []string) *Log {
	if date.IsZero() {
		date = time.Now()
	}
	return &Log{
		ID:        id,
		OwnerID:   ownerID,
		Date:      date,
		Tasks:     tasks,
		TimeSpent: timeSpent,
		Mood:      mood,
		Blockers:  blockers,
		Tags:      tags,
		Reviewed:  false,
	}
}

// LogPatch carries the content fields an owner may change on an
// unreviewed log. Unset fields leave the record untouched. Identity,
// date and review fields are not representable here, so a decoded
// request body cannot reach them.
type LogPatch struct {
	Tasks     *string   `json:"tasks"`
	TimeSpent *float64  `json:"time_spent"`
	Mood      *Mood     `json:"mood"`
	Blockers  *string   `json:"blockers"`
	Tags      *[]string `json:"tags"`
}

// IsEmpty reports whether the patch changes nothing
func (p LogPatch) IsEmpty() bool {
	return p.Tasks == nil && p.TimeSpent == nil && p.Mood == nil && p.Blockers == nil && p.Tags == nil
}

// Apply merges the patch into the log's content fields
func (l *Log) Apply(patch LogPatch) {
	if patch.Tasks != nil {
		l.Tasks = *patch.Tasks
	}
	if patch.TimeSpent != nil {
		l.TimeSpent = *patch.TimeSpent
	}
	if patch.Mood != nil {
		l.Mood = *patch.Mood
	}
	if patch.Blockers != nil {
		l.Blockers = *patch.Blockers
	}
	if patch.Tags != nil {
		l.Tags = *patch.Tags
	}
}

// Review marks the log reviewed and attaches feedback. The flag is
// monotonic: re-reviewing only overwrites the feedback text.
func (l *Log) Review(feedback string) {
	l.Reviewed = true
	l.Feedback = feedback
}
