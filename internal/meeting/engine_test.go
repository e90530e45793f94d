package meeting

import (
	"encoding/json"
	"testing"
	"time"
)

func newTestEngine(t *testing.T, kv *mapKV, clock *TestClock) *Engine {
	t.Helper()
	eng := NewEngine(newTestSafe(kv), testLogger(), Options{
		Clock: clock,
		// Keep the tick goroutine out of the way; tests drive the clock.
		TickInterval: time.Hour,
	})
	t.Cleanup(eng.Close)
	return eng
}

func testClockAt(hour, minute int) *TestClock {
	return &TestClock{CurrentTime: time.Date(2025, 6, 15, hour, minute, 0, 0, time.Local)}
}

func TestStartFromIdle(t *testing.T) {
	clock := testClockAt(10, 0)
	eng := newTestEngine(t, newMapKV(), clock)

	eng.Start()

	sess := eng.Session()
	if !sess.Running {
		t.Fatal("session not running after Start")
	}
	if sess.StartTime == nil || !sess.StartTime.Equal(clock.CurrentTime) {
		t.Errorf("StartTime = %v, want %v", sess.StartTime, clock.CurrentTime)
	}
	if sess.Duration != 0 {
		t.Errorf("Duration = %v, want 0", sess.Duration)
	}
}

func TestPauseFreezesDuration(t *testing.T) {
	clock := testClockAt(10, 0)
	eng := newTestEngine(t, newMapKV(), clock)

	eng.Start()
	clock.Advance(5 * time.Second)
	eng.Pause()

	sess := eng.Session()
	if sess.Running {
		t.Fatal("session still running after Pause")
	}
	if sess.Duration != 5*time.Second {
		t.Errorf("Duration = %v, want 5s", sess.Duration)
	}

	// Paused: further clock movement leaves duration untouched.
	clock.Advance(time.Minute)
	if got := eng.Session().Duration; got != 5*time.Second {
		t.Errorf("Duration drifted while paused: %v", got)
	}
}

func TestPauseWhenNotRunningIsNoop(t *testing.T) {
	clock := testClockAt(10, 0)
	eng := newTestEngine(t, newMapKV(), clock)

	before := eng.Session()
	eng.Pause()
	if eng.Session() != before {
		t.Error("Pause changed state of an idle session")
	}
}

// start → wait Δ1 → pause → wait Δ2 → start → wait Δ3: the final duration is
// Δ1+Δ3 and never decreases; the paused gap is not counted.
func TestResumeSkipsPausedGap(t *testing.T) {
	clock := testClockAt(10, 0)
	eng := newTestEngine(t, newMapKV(), clock)

	eng.Start()
	clock.Advance(5 * time.Second)
	eng.Pause()

	clock.Advance(10 * time.Minute)
	eng.Start()

	sess := eng.Session()
	if !sess.Running {
		t.Fatal("session not running after resume")
	}
	// The start time is shifted so that now - startTime equals the frozen
	// duration.
	if got := clock.CurrentTime.Sub(*sess.StartTime); got != 5*time.Second {
		t.Errorf("now - StartTime = %v, want 5s", got)
	}

	clock.Advance(3 * time.Second)
	eng.Pause()
	if got := eng.Session().Duration; got != 8*time.Second {
		t.Errorf("Duration = %v, want 8s", got)
	}
}

func TestStopResetsToIdle(t *testing.T) {
	clock := testClockAt(10, 0)
	eng := newTestEngine(t, newMapKV(), clock)

	eng.SetGroup1Participants(4)
	eng.Start()
	clock.Advance(time.Minute)
	eng.Stop()

	sess := eng.Session()
	if sess.StartTime != nil || sess.Duration != 0 || sess.Running {
		t.Errorf("Stop left session %+v, want idle", sess)
	}
	if sess.Group1Participants != 4 {
		t.Errorf("Stop reset participants: %d, want 4", sess.Group1Participants)
	}
}

func TestSetManualStartTime(t *testing.T) {
	clock := testClockAt(10, 0)
	eng := newTestEngine(t, newMapKV(), clock)

	eng.Start()
	eng.SetManualStartTime("09:15")

	sess := eng.Session()
	want := time.Date(2025, 6, 15, 9, 15, 0, 0, time.Local)
	if sess.StartTime == nil || !sess.StartTime.Equal(want) {
		t.Fatalf("StartTime = %v, want %v", sess.StartTime, want)
	}
	// Running: duration reflects the edit immediately.
	if sess.Duration != 45*time.Minute {
		t.Errorf("Duration = %v, want 45m", sess.Duration)
	}
}

func TestSetManualStartTimeBareDigits(t *testing.T) {
	clock := testClockAt(10, 0)
	eng := newTestEngine(t, newMapKV(), clock)

	eng.Start()
	eng.SetManualStartTime("0930")

	sess := eng.Session()
	want := time.Date(2025, 6, 15, 9, 30, 0, 0, time.Local)
	if sess.StartTime == nil || !sess.StartTime.Equal(want) {
		t.Errorf("StartTime = %v, want %v", sess.StartTime, want)
	}
}

func TestSetManualStartTimeRejected(t *testing.T) {
	clock := testClockAt(10, 0)
	eng := newTestEngine(t, newMapKV(), clock)

	eng.Start()
	clock.Advance(30 * time.Second)
	eng.Pause()
	before := eng.Session()

	// Future time of day and garbage both leave the state untouched.
	for _, text := range []string{"23:45", "10:01", "nonsense", "25:00", "12:99", ""} {
		eng.SetManualStartTime(text)
		if got := eng.Session(); got != before {
			t.Errorf("SetManualStartTime(%q) changed state: %+v", text, got)
		}
	}
}

func TestParticipantClamping(t *testing.T) {
	eng := newTestEngine(t, newMapKV(), testClockAt(10, 0))

	eng.SetGroup1Participants(-5)
	if got := eng.Session().Group1Participants; got != 0 {
		t.Errorf("negative participants = %d, want 0", got)
	}

	eng.SetGroup2Participants(5000)
	if got := eng.Session().Group2Participants; got != DefaultMaxParticipants {
		t.Errorf("participants = %d, want ceiling %d", got, DefaultMaxParticipants)
	}
}

func TestUpdateConfigMergesPartial(t *testing.T) {
	eng := newTestEngine(t, newMapKV(), testClockAt(10, 0))

	rate := 55.0
	eng.UpdateConfig(ConfigPatch{Group1HourlyRate: &rate})

	cfg := eng.Config()
	if cfg.Group1HourlyRate != 55 {
		t.Errorf("Group1HourlyRate = %v, want 55", cfg.Group1HourlyRate)
	}
	if cfg.WorkingHoursPerDay != 8 {
		t.Errorf("WorkingHoursPerDay = %v, want default 8", cfg.WorkingHoursPerDay)
	}
}

func TestMutationsPersist(t *testing.T) {
	kv := newMapKV()
	clock := testClockAt(10, 0)
	eng := newTestEngine(t, kv, clock)

	eng.Start()

	raw, ok := kv.m[meetingKey]
	if !ok {
		t.Fatal("Start did not persist the session")
	}
	var rec sessionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("persisted session is not valid JSON: %v", err)
	}
	if !rec.IsRunning || rec.StartTime == nil {
		t.Errorf("persisted record = %+v, want running with start time", rec)
	}

	rate := 42.0
	eng.UpdateConfig(ConfigPatch{Group2HourlyRate: &rate})
	if _, ok := kv.m[configKey]; !ok {
		t.Fatal("UpdateConfig did not persist the config")
	}
}

func TestObserversNotified(t *testing.T) {
	eng := newTestEngine(t, newMapKV(), testClockAt(10, 0))

	calls := 0
	eng.Subscribe(func() { calls++ })

	eng.Start()
	eng.SetGroup1Participants(3)
	eng.Pause()

	if calls != 3 {
		t.Errorf("observer called %d times, want 3", calls)
	}
}

func TestOnMeetingStartFiresOnceFromIdle(t *testing.T) {
	clock := testClockAt(10, 0)
	starts := 0
	eng := NewEngine(newTestSafe(newMapKV()), testLogger(), Options{
		Clock:          clock,
		TickInterval:   time.Hour,
		OnMeetingStart: func() { starts++ },
	})
	defer eng.Close()

	eng.Start()
	clock.Advance(time.Second)
	eng.Pause()
	eng.Start() // resume, not a new meeting

	if starts != 1 {
		t.Errorf("OnMeetingStart fired %d times, want 1", starts)
	}
}

func TestLoadResumesRunningSession(t *testing.T) {
	kv := newMapKV()
	clock := testClockAt(10, 0)

	start := clock.CurrentTime.Add(-90 * time.Minute).Format(time.RFC3339)
	seed, _ := json.Marshal(sessionRecord{
		StartTime:          &start,
		IsRunning:          true,
		Group1Participants: 2,
		Group2Participants: 3,
	})
	kv.m[meetingKey] = string(seed)

	eng := newTestEngine(t, kv, clock)

	sess := eng.Session()
	if !sess.Running {
		t.Fatal("loaded running session is not running")
	}
	if sess.Duration != 90*time.Minute {
		t.Errorf("Duration = %v, want 90m", sess.Duration)
	}
	if sess.Group1Participants != 2 || sess.Group2Participants != 3 {
		t.Errorf("participants = %d/%d, want 2/3", sess.Group1Participants, sess.Group2Participants)
	}
}

func TestLoadEvictsExpiredSession(t *testing.T) {
	kv := newMapKV()
	clock := testClockAt(10, 0)

	start := clock.CurrentTime.Add(-25 * time.Hour).Format(time.RFC3339)
	seed, _ := json.Marshal(sessionRecord{
		StartTime:          &start,
		IsRunning:          true,
		Group1Participants: 2,
		Group2Participants: 3,
	})
	kv.m[meetingKey] = string(seed)

	eng := newTestEngine(t, kv, clock)

	sess := eng.Session()
	if sess.StartTime != nil || sess.Duration != 0 || sess.Running {
		t.Errorf("expired session not evicted: %+v", sess)
	}
	if sess.Group1Participants != 2 || sess.Group2Participants != 3 {
		t.Errorf("eviction dropped participants: %d/%d", sess.Group1Participants, sess.Group2Participants)
	}

	// The cleared state was eagerly re-persisted.
	var rec sessionRecord
	if err := json.Unmarshal([]byte(kv.m[meetingKey]), &rec); err != nil {
		t.Fatalf("re-persisted record invalid: %v", err)
	}
	if rec.StartTime != nil || rec.IsRunning {
		t.Errorf("re-persisted record = %+v, want cleared timer", rec)
	}
}

func TestLoadDiscardsInvalidStartTime(t *testing.T) {
	kv := newMapKV()
	kv.m[meetingKey] = `{"startTime": "not-a-date", "isRunning": true, "group1Participants": 2, "group2Participants": 3}`

	eng := newTestEngine(t, kv, testClockAt(10, 0))

	sess := eng.Session()
	if sess != (Session{}) {
		t.Errorf("invalid record not discarded: %+v", sess)
	}
}

func TestLoadClampsNegativeParticipants(t *testing.T) {
	kv := newMapKV()
	kv.m[meetingKey] = `{"startTime": null, "isRunning": false, "group1Participants": -4, "group2Participants": 7}`

	eng := newTestEngine(t, kv, testClockAt(10, 0))

	sess := eng.Session()
	if sess.Group1Participants != 0 || sess.Group2Participants != 7 {
		t.Errorf("participants = %d/%d, want 0/7", sess.Group1Participants, sess.Group2Participants)
	}
}

func TestLoadAdoptsDefaultsOnBadConfig(t *testing.T) {
	kv := newMapKV()
	kv.m[configKey] = "invalid-json"

	eng := newTestEngine(t, kv, testClockAt(10, 0))

	if got := eng.Config(); got != DefaultConfig() {
		t.Errorf("Config = %+v, want defaults", got)
	}
}

func TestLoadClampsConfigIntoBounds(t *testing.T) {
	kv := newMapKV()
	kv.m[configKey] = `{"group1HourlyRate": 5000, "group2HourlyRate": -3, "workingHoursPerDay": 1}`

	eng := newTestEngine(t, kv, testClockAt(10, 0))

	want := Config{Group1HourlyRate: 999, Group2HourlyRate: 0, WorkingHoursPerDay: 4}
	if got := eng.Config(); got != want {
		t.Errorf("Config = %+v, want %+v", got, want)
	}
}

func TestTickAdvancesDuration(t *testing.T) {
	clock := testClockAt(10, 0)
	eng := NewEngine(newTestSafe(newMapKV()), testLogger(), Options{
		Clock:        clock,
		TickInterval: 10 * time.Millisecond,
	})
	defer eng.Close()

	eng.Start()
	clock.Advance(7 * time.Second)

	// Wait for at least one tick to pick up the new clock value.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if eng.Session().Duration == 7*time.Second {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Errorf("Duration = %v, want 7s after tick", eng.Session().Duration)
}
