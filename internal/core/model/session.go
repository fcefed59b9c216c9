package model

import (
	"sort"
	"time"
)

// Session is a derived aggregate of records sharing a session identifier.
// It is materialized lazily from the record stream and never mutated
// incrementally; rebuild it when the source history changes.
type Session struct {
	ID          string
	ProjectID   string
	Records     []UsageRecord
	StartTime   time.Time
	EndTime     time.Time
	TotalTokens int
	TotalCost   float64
}

// Duration returns the elapsed time between the session's first and
// last record.
func (s *Session) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// DurationMinutes returns the session duration in fractional minutes.
func (s *Session) DurationMinutes() float64 {
	return s.Duration().Minutes()
}

// BuildSessions groups a sorted record stream by session identifier.
// The result is ordered by session start time.
func BuildSessions(records []UsageRecord) []*Session {
	byID := make(map[string]*Session)
	var order []string

	for _, rec := range records {
		sess, ok := byID[rec.SessionID]
		if !ok {
			sess = &Session{
				ID:        rec.SessionID,
				ProjectID: rec.ProjectID,
				StartTime: rec.Timestamp,
			}
			byID[rec.SessionID] = sess
			order = append(order, rec.SessionID)
		}
		sess.Records = append(sess.Records, rec)
		if rec.Timestamp.After(sess.EndTime) {
			sess.EndTime = rec.Timestamp
		}
		sess.TotalTokens += rec.TotalTokens()
		sess.TotalCost += rec.Cost
	}

	sessions := make([]*Session, 0, len(order))
	for _, id := range order {
		sessions = append(sessions, byID[id])
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartTime.Before(sessions[j].StartTime)
	})
	return sessions
}
