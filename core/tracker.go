package gesture

import (
	"strconv"
	"sync"
	"time"
)

// FacePolicy selects which faces of a frame are classified.
type FacePolicy int

const (
	// FirstFace classifies only the first reported face and keeps a
	// single debounce state for the whole session.
	FirstFace FacePolicy = iota
	// AllFaces classifies every reported face, each one with the
	// debounce state of its tracking ID.
	AllFaces
)

func (p FacePolicy) String() string {
	switch p {
	case FirstFace:
		return "first"
	case AllFaces:
		return "all"
	}
	return "unknown"
}

// Event is a gesture emitted by the Tracker.
type Event struct {
	Seq        uint64    `json:"seq"`
	TrackingID string    `json:"tracking_id,omitempty"`
	Kind       Kind      `json:"gesture"`
	Time       time.Time `json:"time"`
}

// Tracker classifies the faces of a frame stream. Every tracked face
// owns its debounce state; nothing is shared between trackers.
// It is safe for concurrent use.
type Tracker struct {
	mu         sync.Mutex
	thresholds Thresholds
	policy     FacePolicy
	handler    Handler
	now        func() time.Time
	states     map[string]*DebounceState
}

// TrackerOption customizes a Tracker.
type TrackerOption func(*Tracker)

// WithFacePolicy sets the face selection policy.
func WithFacePolicy(p FacePolicy) TrackerOption {
	return func(t *Tracker) { t.policy = p }
}

// WithHandler registers a handler receiving every emitted gesture.
func WithHandler(h Handler) TrackerOption {
	return func(t *Tracker) { t.handler = h }
}

// WithClock replaces the time source used to stamp events
// coming from frames without timestamp.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a tracker using the given thresholds.
func NewTracker(th Thresholds, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		thresholds: th,
		policy:     FirstFace,
		now:        time.Now,
		states:     make(map[string]*DebounceState),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Thresholds returns the thresholds used by the tracker.
func (t *Tracker) Thresholds() Thresholds {
	return t.thresholds
}

// Policy returns the face selection policy.
func (t *Tracker) Policy() FacePolicy {
	return t.policy
}

// Observe classifies a single face as a one-face frame. It shares the
// debounce states and the handler of ObserveFrame.
func (t *Tracker) Observe(f FaceFeatures) (Kind, bool) {
	events := t.ObserveFrame(0, time.Time{}, []FaceFeatures{f})
	if len(events) == 0 {
		return 0, false
	}
	return events[0].Kind, true
}

// ObserveFrame classifies the faces of one frame and returns the emitted
// gestures in face order. A frame without faces leaves every state
// untouched. Under AllFaces the faces missing from a non-empty frame
// are considered gone and their states are dropped. Registered handlers
// are called after the internal lock has been released.
func (t *Tracker) ObserveFrame(seq uint64, ts time.Time, faces []FaceFeatures) []Event {
	if len(faces) == 0 {
		return nil
	}
	if ts.IsZero() {
		ts = t.now()
	}

	var events []Event

	t.mu.Lock()
	switch t.policy {
	case AllFaces:
		seen := make(map[string]struct{}, len(faces))
		for i, f := range faces {
			key := FaceKey(f, i)
			seen[key] = struct{}{}
			if kind, ok := Classify(f, t.thresholds, t.state(key)); ok {
				events = append(events, Event{Seq: seq, TrackingID: f.TrackingID, Kind: kind, Time: ts})
			}
		}
		for key := range t.states {
			if _, ok := seen[key]; !ok {
				delete(t.states, key)
			}
		}
	default:
		// The remaining faces are ignored.
		f := faces[0]
		if kind, ok := Classify(f, t.thresholds, t.state("")); ok {
			events = append(events, Event{Seq: seq, TrackingID: f.TrackingID, Kind: kind, Time: ts})
		}
	}
	handler := t.handler
	t.mu.Unlock()

	if handler != nil {
		for _, ev := range events {
			handler.HandleGesture(ev)
		}
	}
	return events
}

// FaceKey returns the key of the debounce state used under AllFaces for
// the face at index i of a frame. Faces without tracking ID are keyed by
// their position.
func FaceKey(f FaceFeatures, i int) string {
	if f.TrackingID != "" {
		return f.TrackingID
	}
	return "#" + strconv.Itoa(i)
}

// Resting reports whether the face with the given key is resting.
// Unknown faces are resting.
func (t *Tracker) Resting(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.states[id]; ok {
		return s.Resting
	}
	return true
}

// Forget drops the debounce state of a face.
func (t *Tracker) Forget(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.states, id)
}

// Reset drops every debounce state, as if the session was restarted.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.states = make(map[string]*DebounceState)
}

// Len returns the number of faces with a debounce state.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.states)
}

// state returns the debounce state stored under key, creating it if needed.
// Caller must hold the lock.
func (t *Tracker) state(key string) *DebounceState {
	s, ok := t.states[key]
	if !ok {
		st := NewDebounceState()
		s = &st
		t.states[key] = s
	}
	return s
}
