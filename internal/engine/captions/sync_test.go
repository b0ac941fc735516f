package captions

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestUpdateScenario(t *testing.T) {
	seq := Parse(kenobiVTT)

	steps := []struct {
		time        float64
		prev        int
		wantIdx     int
		wantChanged bool
	}{
		{3.0, NoCaption, 1, true},
		{3.0, 1, 1, false},
		{10.0, 1, NoCaption, true},
		{10.0, NoCaption, NoCaption, false},
	}
	for _, s := range steps {
		idx, changed := Update(seq, s.time, s.prev)
		if idx != s.wantIdx || changed != s.wantChanged {
			t.Errorf("Update(seq, %v, %d) = (%d, %v), want (%d, %v)",
				s.time, s.prev, idx, changed, s.wantIdx, s.wantChanged)
		}
	}
}

func TestActiveIndex(t *testing.T) {
	seq := Sequence{
		{Start: 1, End: 2, Text: "a"},
		{Start: 2, End: 4, Text: "b"},
		{Start: 3, End: 6, Text: "c"},
	}
	tests := []struct {
		name string
		time float64
		want int
	}{
		{"before first cue", 0.5, NoCaption},
		{"inclusive start", 1, 0},
		{"shared boundary goes to first", 2, 0},
		{"overlap resolves to earliest", 3.5, 1},
		{"only later cue", 5, 2},
		{"inclusive end of last", 6, 2},
		{"after last cue", 6.01, NoCaption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActiveIndex(seq, tt.time); got != tt.want {
				t.Errorf("ActiveIndex(%v) = %d, want %d", tt.time, got, tt.want)
			}
		})
	}
}

func TestActiveIndexEmpty(t *testing.T) {
	if got := ActiveIndex(nil, 1); got != NoCaption {
		t.Errorf("ActiveIndex(nil) = %d, want NoCaption", got)
	}
}

type fakePlayer struct {
	mu      sync.Mutex
	now     float64
	seeks   []float64
	playing bool
}

func (p *fakePlayer) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now
}

func (p *fakePlayer) SeekTo(s float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = s
	p.seeks = append(p.seeks, s)
}

func (p *fakePlayer) Play()  { p.playing = true }
func (p *fakePlayer) Pause() { p.playing = false }

func (p *fakePlayer) set(s float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = s
}

func TestFollowerTick(t *testing.T) {
	p := &fakePlayer{}
	f := NewFollower(p, time.Hour)
	f.Load(Parse(kenobiVTT))

	var got []int
	f.OnChange = func(idx int, _ Sequence) { got = append(got, idx) }

	for _, now := range []float64{0.5, 1.0, 3.0, 4.0, 9.0, 9.5} {
		p.set(now)
		f.Tick()
	}
	want := []int{0, 1, NoCaption}
	if len(got) != len(want) {
		t.Fatalf("OnChange calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("OnChange[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestFollowerLoadResetsActive(t *testing.T) {
	p := &fakePlayer{now: 1}
	f := NewFollower(p, time.Hour)
	f.Load(Parse(kenobiVTT))
	f.Tick()
	if f.Active() != 0 {
		t.Fatalf("Active() = %d, want 0", f.Active())
	}
	f.Load(nil)
	if f.Active() != NoCaption {
		t.Errorf("Active() after Load = %d, want NoCaption", f.Active())
	}
	if len(f.Sequence()) != 0 {
		t.Errorf("Sequence() after Load(nil) has %d cues", len(f.Sequence()))
	}
}

func TestFollowerSeekTo(t *testing.T) {
	p := &fakePlayer{}
	f := NewFollower(p, time.Hour)
	f.Load(Parse(kenobiVTT))

	if !f.SeekTo(1) {
		t.Fatal("SeekTo(1) = false")
	}
	if p.CurrentTime() != 2.5 {
		t.Errorf("player time = %v, want 2.5", p.CurrentTime())
	}
	if f.Active() != 0 {
		// 2.5 is inside both cues; the earlier one wins.
		t.Errorf("Active() = %d, want 0", f.Active())
	}
	if f.SeekTo(5) {
		t.Error("SeekTo out of range = true")
	}
}

func TestFollowerStartStop(t *testing.T) {
	p := &fakePlayer{now: 3}
	f := NewFollower(p, 5*time.Millisecond)
	f.Load(Parse(kenobiVTT))

	changes := make(chan int, 16)
	f.OnChange = func(idx int, _ Sequence) { changes <- idx }

	ctx := context.Background()
	f.HandleState(ctx, StatePlaying)
	select {
	case idx := <-changes:
		if idx != 1 {
			t.Errorf("first change = %d, want 1", idx)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported while playing")
	}

	// Restarting replaces the loop rather than adding a second one.
	f.Start(ctx)
	if !f.Running() {
		t.Fatal("Running() = false after Start")
	}

	f.HandleState(ctx, StatePaused)
	if f.Running() {
		t.Fatal("Running() = true after pause")
	}

	p.set(10)
	time.Sleep(20 * time.Millisecond)
	select {
	case idx := <-changes:
		t.Errorf("unexpected change %d while paused", idx)
	default:
	}
	f.Stop()
}

// gatedPlayer parks the first CurrentTime call until release is closed.
type gatedPlayer struct {
	fakePlayer
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (p *gatedPlayer) CurrentTime() float64 {
	p.once.Do(func() {
		close(p.entered)
		<-p.release
	})
	return p.fakePlayer.CurrentTime()
}

func TestFollowerLoadDuringTick(t *testing.T) {
	p := &gatedPlayer{entered: make(chan struct{}), release: make(chan struct{})}
	p.set(1)
	f := NewFollower(p, time.Hour)
	f.Load(Sequence{{Start: 0, End: 10, Text: "old video"}})

	var (
		mu    sync.Mutex
		texts []string
	)
	f.OnChange = func(idx int, seq Sequence) {
		mu.Lock()
		defer mu.Unlock()
		if idx == NoCaption {
			texts = append(texts, "-")
			return
		}
		texts = append(texts, seq[idx].Text)
	}

	ticked := make(chan struct{})
	go func() {
		f.Tick()
		close(ticked)
	}()
	<-p.entered

	loaded := make(chan struct{})
	go func() {
		f.Load(Sequence{{Start: 0, End: 10, Text: "new video"}})
		close(loaded)
	}()
	select {
	case <-loaded:
		t.Fatal("Load returned while a tick was sampling the old sequence")
	case <-time.After(20 * time.Millisecond):
	}

	close(p.release)
	<-ticked
	<-loaded

	if idx, changed := f.Tick(); idx != 0 || !changed {
		t.Fatalf("Tick after Load = (%d, %v), want (0, true)", idx, changed)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(texts) != 2 || texts[0] != "old video" || texts[1] != "new video" {
		t.Fatalf("OnChange saw %q, want [old video new video]", texts)
	}
}

func TestFollowerConcurrentTicksNotifyOnce(t *testing.T) {
	p := &fakePlayer{now: 1}
	f := NewFollower(p, time.Hour)
	f.Load(Parse(kenobiVTT))

	var (
		calls    atomic.Int32
		inFlight atomic.Int32
		overlap  atomic.Bool
	)
	f.OnChange = func(int, Sequence) {
		if inFlight.Add(1) > 1 {
			overlap.Store(true)
		}
		calls.Add(1)
		time.Sleep(time.Millisecond)
		inFlight.Add(-1)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Tick()
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.SeekTo(0)
	}()
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("OnChange called %d times, want 1", got)
	}
	if overlap.Load() {
		t.Error("OnChange calls overlapped")
	}
	if f.Active() != 0 {
		t.Errorf("Active() = %d, want 0", f.Active())
	}
}

func TestPlayerStateString(t *testing.T) {
	if StateBuffering.String() != "buffering" {
		t.Errorf("StateBuffering = %q", StateBuffering.String())
	}
	if PlayerState(42).String() != "unknown" {
		t.Errorf("PlayerState(42) = %q", PlayerState(42).String())
	}
}
