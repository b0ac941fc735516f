package captions

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTickInterval is how often a playing Follower samples the clock.
const DefaultTickInterval = 500 * time.Millisecond

// Clock exposes the externally owned playback position in seconds.
type Clock interface {
	CurrentTime() float64
}

// Player is the control surface of an embedded video player.
type Player interface {
	Clock
	SeekTo(seconds float64)
	Play()
	Pause()
}

// PlayerState mirrors the YouTube iframe player state codes.
type PlayerState int

const (
	StateUnstarted PlayerState = -1
	StateEnded     PlayerState = 0
	StatePlaying   PlayerState = 1
	StatePaused    PlayerState = 2
	StateBuffering PlayerState = 3
	StateCued      PlayerState = 5
)

func (s PlayerState) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateEnded:
		return "ended"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateBuffering:
		return "buffering"
	case StateCued:
		return "cued"
	}
	return "unknown"
}

// Follower keeps the active caption in step with a Player.
// While playing it samples the clock on a single ticker and calls OnChange
// only when the active index moves.
type Follower struct {
	player   Player
	interval time.Duration

	// OnChange receives the new active index (NoCaption when none) and the sequence
	// it indexes into. Calls never overlap. It must not call Load, SeekTo, Tick,
	// Start or Stop.
	OnChange func(idx int, seq Sequence)

	// tickMu orders each sample-store-notify step against Load and other ticks.
	tickMu sync.Mutex
	seq    atomic.Pointer[Sequence]
	active atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewFollower creates a stopped Follower. interval <= 0 uses DefaultTickInterval.
func NewFollower(player Player, interval time.Duration) *Follower {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	f := &Follower{player: player, interval: interval}
	empty := Sequence{}
	f.seq.Store(&empty)
	f.active.Store(NoCaption)
	return f
}

// Load swaps in a new sequence and resets the active caption.
func (f *Follower) Load(seq Sequence) {
	if seq == nil {
		seq = Sequence{}
	}
	f.tickMu.Lock()
	defer f.tickMu.Unlock()
	f.seq.Store(&seq)
	f.active.Store(NoCaption)
}

// Sequence returns the currently loaded sequence.
func (f *Follower) Sequence() Sequence {
	return *f.seq.Load()
}

// Active returns the current active index.
func (f *Follower) Active() int {
	return int(f.active.Load())
}

// Tick samples the clock once and reports whether the active caption changed.
func (f *Follower) Tick() (int, bool) {
	f.tickMu.Lock()
	defer f.tickMu.Unlock()
	seq := *f.seq.Load()
	prev := int(f.active.Load())
	idx, changed := Update(seq, f.player.CurrentTime(), prev)
	if !changed {
		return idx, false
	}
	f.active.Store(int64(idx))
	if f.OnChange != nil {
		f.OnChange(idx, seq)
	}
	return idx, true
}

// Start begins ticking, replacing any loop already running.
func (f *Follower) Start(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	f.cancel = cancel
	f.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		f.Tick()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				f.Tick()
			}
		}
	}()
}

// Stop halts the tick loop and waits for it to exit. Safe to call when stopped.
func (f *Follower) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopLocked()
}

func (f *Follower) stopLocked() {
	if f.cancel == nil {
		return
	}
	f.cancel()
	<-f.done
	f.cancel = nil
	f.done = nil
}

// Running reports whether a tick loop is active.
func (f *Follower) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancel != nil
}

// HandleState reacts to a player state notification: tick while playing, idle otherwise.
func (f *Follower) HandleState(ctx context.Context, state PlayerState) {
	slog.Debug("captions: player state", slog.String("state", state.String()))
	if state == StatePlaying {
		f.Start(ctx)
		return
	}
	f.Stop()
}

// SeekTo moves the player to the start of caption i and re-samples immediately.
// Out-of-range indexes are ignored.
func (f *Follower) SeekTo(i int) bool {
	seq := *f.seq.Load()
	if i < 0 || i >= len(seq) {
		return false
	}
	f.player.SeekTo(seq[i].Start)
	f.Tick()
	return true
}
