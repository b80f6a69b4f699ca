/*
Package audio plays the squad alarm siren.

All alarms share one Device. Each alarm owns a paused-or-playing control on
the device mixer, so several squads can sound at once.
*/
package audio

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(48000)
	bufferTime = 100 * time.Millisecond
)

var ErrDeviceClosed = errors.New("audio device closed")

// Output is the sound sink the device plays into.
type Output interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
}

type speakerOutput struct{}

func (speakerOutput) Init(sr beep.SampleRate, bufferSize int) error { return speaker.Init(sr, bufferSize) }
func (speakerOutput) Play(s ...beep.Streamer)                       { speaker.Play(s...) }
func (speakerOutput) Lock()                                         { speaker.Lock() }
func (speakerOutput) Unlock()                                       { speaker.Unlock() }

// Device owns the speaker and the mixer every alarm plays through.
type Device struct {
	mu          sync.Mutex
	out         Output
	mixer       *beep.Mixer
	initialized bool
	closed      bool
}

// NewDevice creates a device on the system speaker.
func NewDevice() *Device {
	return NewDeviceWithOutput(speakerOutput{})
}

// NewDeviceWithOutput creates a device on out.
func NewDeviceWithOutput(out Output) *Device {
	return &Device{out: out, mixer: &beep.Mixer{}}
}

// init opens the output on first use.
func (d *Device) init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDeviceClosed
	}
	if d.initialized {
		return nil
	}
	if err := d.out.Init(sampleRate, sampleRate.N(bufferTime)); err != nil {
		return err
	}
	d.out.Play(d.mixer)
	d.initialized = true
	return nil
}

// Close silences every alarm. The device cannot be reopened.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	if !d.initialized {
		return
	}
	d.out.Lock()
	d.mixer.Clear()
	d.out.Unlock()
	d.initialized = false
}

// Playing returns how many streamers sit on the mixer, paused or not.
func (d *Device) Playing() int {
	d.out.Lock()
	defer d.out.Unlock()
	return d.mixer.Len()
}

// NewAlarm creates a silent alarm on the device.
func (d *Device) NewAlarm() *Alarm {
	return &Alarm{device: d}
}

// Alarm is one siren. It implements game.Alarm.
type Alarm struct {
	mu     sync.Mutex
	device *Device
	ctrl   *beep.Ctrl
}

// Start sounds the siren. Starting a sounding siren does nothing.
func (a *Alarm) Start() error {
	if err := a.device.init(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.device.out.Lock()
	defer a.device.out.Unlock()

	if a.ctrl != nil {
		a.ctrl.Paused = false
		return nil
	}
	a.ctrl = &beep.Ctrl{Streamer: NewSirenGenerator(sampleRate), Paused: false}
	a.device.mixer.Add(a.ctrl)
	return nil
}

// Stop silences the siren.
func (a *Alarm) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ctrl == nil {
		return nil
	}
	a.device.out.Lock()
	a.ctrl.Paused = true
	a.device.out.Unlock()
	return nil
}

// Sounding reports whether the siren is playing.
func (a *Alarm) Sounding() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ctrl == nil {
		return false
	}
	a.device.out.Lock()
	defer a.device.out.Unlock()
	return !a.ctrl.Paused
}

// SirenGenerator streams an endless two tone wail.
type SirenGenerator struct {
	sr     beep.SampleRate
	pos    int
	cycle  int
	phase  float64
	volume float64
}

// NewSirenGenerator creates a siren that sweeps between 600 and 1200 Hz once per second.
func NewSirenGenerator(sr beep.SampleRate) *SirenGenerator {
	return &SirenGenerator{
		sr:     sr,
		cycle:  sr.N(time.Second),
		volume: 0.2,
	}
}

func (g *SirenGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		cyclePos := float64(g.pos%g.cycle) / float64(g.cycle)
		freq := 900 + 300*math.Sin(2*math.Pi*cyclePos)

		// Phase accumulates so the sweep stays click free.
		g.phase += 2 * math.Pi * freq / float64(g.sr)
		if g.phase > 2*math.Pi {
			g.phase -= 2 * math.Pi
		}
		sample := g.volume * math.Sin(g.phase)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *SirenGenerator) Err() error {
	return nil
}

// Nop is a silent alarm for headless runs.
type Nop struct{}

func (Nop) Start() error { return nil }
func (Nop) Stop() error  { return nil }
