package main

import (
	"sync"
	"time"
)

// simPlayer is a wall-clock Player: while playing, position advances with real
// time scaled by speed.
type simPlayer struct {
	mu      sync.Mutex
	now     func() time.Time
	speed   float64
	base    float64 // position at anchor
	anchor  time.Time
	playing bool
}

func newSimPlayer(speed float64, now func() time.Time) *simPlayer {
	if speed <= 0 {
		speed = 1
	}
	if now == nil {
		now = time.Now
	}
	return &simPlayer{now: now, speed: speed, anchor: now()}
}

func (p *simPlayer) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *simPlayer) positionLocked() float64 {
	if !p.playing {
		return p.base
	}
	return p.base + p.now().Sub(p.anchor).Seconds()*p.speed
}

func (p *simPlayer) SeekTo(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	p.base = seconds
	p.anchor = p.now()
}

func (p *simPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return
	}
	p.anchor = p.now()
	p.playing = true
}

func (p *simPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = p.positionLocked()
	p.playing = false
}
