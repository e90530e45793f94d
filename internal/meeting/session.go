package meeting

import (
	"encoding/json"
	"time"

	"meeting_cost_tui/internal/storage"
)

// Session is one in-progress or paused meeting. A nil StartTime means no
// meeting has been started (Idle). Running implies StartTime is set.
type Session struct {
	StartTime          *time.Time
	Duration           time.Duration
	Running            bool
	Group1Participants int
	Group2Participants int
}

// sessionRecord is the persisted shape of a Session. Duration is deliberately
// not stored; it is reconstructed from StartTime on load.
type sessionRecord struct {
	StartTime          *string `json:"startTime"`
	IsRunning          bool    `json:"isRunning"`
	Group1Participants int     `json:"group1Participants"`
	Group2Participants int     `json:"group2Participants"`
}

// saveSession writes s. Failures are swallowed by the safe accessor.
func saveSession(kv *storage.Safe, s Session) {
	rec := sessionRecord{
		IsRunning:          s.Running,
		Group1Participants: s.Group1Participants,
		Group2Participants: s.Group2Participants,
	}
	if s.StartTime != nil {
		formatted := s.StartTime.Format(time.RFC3339)
		rec.StartTime = &formatted
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	kv.Set(meetingKey, string(data))
}

// loadSession reads the persisted session and repairs it: an unparseable
// start time discards the whole record, a start time older than expiry
// evicts the session (the cleared state is eagerly re-persisted so it is not
// expired again on every load), participant counts are clamped to zero, and
// a running session gets its duration recomputed from now.
func loadSession(kv *storage.Safe, now time.Time, expiry time.Duration) (Session, bool) {
	raw, ok := kv.Get(meetingKey)
	if !ok {
		return Session{}, false
	}

	var rec sessionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Session{}, false
	}

	var start *time.Time
	if rec.StartTime != nil {
		t, err := time.Parse(time.RFC3339, *rec.StartTime)
		if err != nil {
			return Session{}, false
		}
		start = &t
	}

	s := Session{
		Group1Participants: max(0, rec.Group1Participants),
		Group2Participants: max(0, rec.Group2Participants),
	}

	if start != nil && now.Sub(*start) > expiry {
		// Abandoned session: reset the timer but keep the participant counts.
		saveSession(kv, s)
		return s, true
	}

	s.StartTime = start
	s.Running = rec.IsRunning && start != nil
	if s.Running {
		s.Duration = max(0, now.Sub(*start))
	}
	return s, true
}
