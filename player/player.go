package player

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ludyw21/autokeys/model"
	"github.com/ludyw21/autokeys/util"
)

// State is the playback lifecycle. Transitions: Idle -> Playing,
// Playing <-> Paused, any -> Stopped. A stopped player can start a new
// session, which resets it to Playing.
type State int32

const (
	Idle State = iota
	Playing
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return "idle"
}

// ErrBusy is returned by Start while a session is playing or paused.
var ErrBusy = errors.New("player busy")

const progressDebounce = 50 * time.Millisecond

// Player schedules key events in real time against a KeySender,
// guaranteeing every pressed key is released no matter how playback
// ends.
type Player struct {
	sender KeySender
	opts   model.Options
	cb     model.Callbacks
	log    *zap.Logger

	mu        sync.Mutex
	state     atomic.Int32
	progress  atomic.Uint64 // percent x 100
	sessionId string
	done      chan struct{}
}

func New(sender KeySender, opts model.Options, cb model.Callbacks, log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{sender: sender, opts: opts, cb: cb, log: log}
}

// Start launches playback of the events on a new goroutine. It fails
// with ErrBusy while a previous session is still playing or paused.
func (p *Player) Start(events []model.KeyEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch State(p.state.Load()) {
	case Playing, Paused:
		return ErrBusy
	}
	if len(events) == 0 {
		return errors.New("no events to play")
	}

	sorted := make([]model.KeyEvent, len(events))
	copy(sorted, events)
	model.SortEvents(sorted)

	p.sessionId = uuid.New().String()
	p.done = make(chan struct{})
	p.progress.Store(0)
	p.state.Store(int32(Playing))
	p.log.Info("playback starting",
		zap.String("session", p.sessionId),
		zap.Int("events", len(sorted)),
		zap.Float64("tempo", p.opts.Tempo))

	go p.run(sorted, p.done)
	return nil
}

// Pause suspends the scheduler clock. No keys are released; held
// notes stay held.
func (p *Player) Pause() {
	if p.state.CompareAndSwap(int32(Playing), int32(Paused)) {
		p.log.Info("playback paused", zap.String("session", p.SessionId()))
		p.cb.EmitPause()
	}
}

// Resume continues a paused session.
func (p *Player) Resume() {
	if p.state.CompareAndSwap(int32(Paused), int32(Playing)) {
		p.log.Info("playback resumed", zap.String("session", p.SessionId()))
		p.cb.EmitResume()
	}
}

// Stop ends the session. The playback goroutine releases all held
// keys before exiting.
func (p *Player) Stop() {
	for {
		s := State(p.state.Load())
		if s != Playing && s != Paused {
			return
		}
		if p.state.CompareAndSwap(int32(s), int32(Stopped)) {
			p.log.Info("playback stopped", zap.String("session", p.SessionId()))
			return
		}
	}
}

// Wait blocks until the current session's goroutine has finished and
// cleaned up.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (p *Player) State() State {
	return State(p.state.Load())
}

// Progress reports percent complete, 0..100.
func (p *Player) Progress() float64 {
	return float64(p.progress.Load()) / 100
}

func (p *Player) SessionId() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessionId
}

func (p *Player) run(events []model.KeyEvent, done chan struct{}) {
	defer close(done)

	tempo := p.opts.Tempo
	if tempo <= 0 {
		tempo = 1
	}
	sendAhead := time.Duration(p.opts.SendAheadMs * float64(time.Millisecond))
	spin := time.Duration(p.opts.SpinThreshold * float64(time.Millisecond))
	total := model.MaxTime(events) / tempo
	if total <= 0 {
		total = 1e-9
	}

	refcounts := make(map[string]int)
	emitProgress := debounce.New(progressDebounce)

	cleanup := func() {
		var held []string
		for key, count := range refcounts {
			if count > 0 {
				held = append(held, key)
			}
		}
		if len(held) > 0 {
			if err := p.sender.Release(held); err != nil {
				p.handleError(fmt.Errorf("releasing held keys: %w", err))
			}
		}
		if err := p.sender.ReleaseAll(); err != nil {
			p.handleError(fmt.Errorf("release all: %w", err))
		}
	}
	defer cleanup()
	defer p.state.CompareAndSwap(int32(Playing), int32(Stopped))

	p.cb.EmitStart()
	start := time.Now()

	for _, event := range events {
		target := start.Add(time.Duration((event.Time/tempo)*float64(time.Second)) - sendAhead)

		for {
			switch State(p.state.Load()) {
			case Stopped:
				return
			case Paused:
				pausedAt := time.Now()
				time.Sleep(10 * time.Millisecond)
				delta := time.Since(pausedAt)
				start = start.Add(delta)
				target = target.Add(delta)
				continue
			}
			remain := time.Until(target)
			if remain <= 0 {
				break
			}
			switch {
			case remain > 20*time.Millisecond:
				time.Sleep(remain - 10*time.Millisecond)
			case remain > spin:
				time.Sleep(500 * time.Microsecond)
			default:
				runtime.Gosched()
			}
		}
		if State(p.state.Load()) == Stopped {
			return
		}

		p.dispatch(event, refcounts)

		percent := util.Clamp(time.Since(start).Seconds()/total*100, 0, 100)
		p.progress.Store(uint64(percent * 100))
		emitProgress(func() { p.cb.EmitProgress(p.Progress()) })
	}

	p.progress.Store(100 * 100)
	if p.state.CompareAndSwap(int32(Playing), int32(Stopped)) {
		p.cb.EmitProgress(100)
		p.cb.EmitComplete()
		p.log.Info("playback complete", zap.String("session", p.SessionId()))
	}
}

func (p *Player) dispatch(event model.KeyEvent, refcounts map[string]int) {
	switch event.Action {
	case model.Press:
		if refcounts[event.Key] == 0 {
			if err := p.sender.Press([]string{event.Key}); err != nil {
				p.handleError(fmt.Errorf("press %q: %w", event.Key, err))
				return
			}
		}
		refcounts[event.Key]++
	case model.Release:
		if refcounts[event.Key] == 0 {
			return // already up
		}
		refcounts[event.Key]--
		if refcounts[event.Key] == 0 {
			if err := p.sender.Release([]string{event.Key}); err != nil {
				p.handleError(fmt.Errorf("release %q: %w", event.Key, err))
			}
		}
	}
}

func (p *Player) handleError(err error) {
	p.log.Error("playback error", zap.Error(err))
	p.cb.EmitError(err)
}
