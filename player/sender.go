package player

import (
	"sync"

	"go.uber.org/zap"
)

// KeySender delivers physical key actions. Implementations must be
// safe for use from the playback goroutine.
type KeySender interface {
	Press(keys []string) error
	Release(keys []string) error
	ReleaseAll() error
}

// LogSender logs key actions instead of sending them, for dry runs.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Press(keys []string) error {
	s.log.Info("press", zap.Strings("keys", keys))
	return nil
}

func (s *LogSender) Release(keys []string) error {
	s.log.Info("release", zap.Strings("keys", keys))
	return nil
}

func (s *LogSender) ReleaseAll() error {
	s.log.Info("release all")
	return nil
}

// Recorder captures every action for inspection in tests.
type Recorder struct {
	mu      sync.Mutex
	actions []RecordedAction
	held    map[string]int
}

type RecordedAction struct {
	Kind string // "press", "release", "release_all"
	Keys []string
}

func NewRecorder() *Recorder {
	return &Recorder{held: make(map[string]int)}
}

func (r *Recorder) Press(keys []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, RecordedAction{"press", append([]string(nil), keys...)})
	for _, k := range keys {
		r.held[k]++
	}
	return nil
}

func (r *Recorder) Release(keys []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, RecordedAction{"release", append([]string(nil), keys...)})
	for _, k := range keys {
		if r.held[k] > 0 {
			r.held[k]--
		}
		if r.held[k] == 0 {
			delete(r.held, k)
		}
	}
	return nil
}

func (r *Recorder) ReleaseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, RecordedAction{Kind: "release_all"})
	r.held = make(map[string]int)
	return nil
}

// Actions returns a copy of everything recorded so far.
func (r *Recorder) Actions() []RecordedAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedAction(nil), r.actions...)
}

// Held reports keys currently considered down.
func (r *Recorder) Held() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []string
	for k := range r.held {
		keys = append(keys, k)
	}
	return keys
}
