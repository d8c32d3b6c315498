package synth

import (
	"context"
	"encoding/binary"
	"math"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/vaysari11/Final-supernova/internal/audio"
	"github.com/vaysari11/Final-supernova/internal/book"
)

// Mock is an offline Synthesizer producing a short tone per rune of text.
type Mock struct {
	mu sync.Mutex

	format    audio.PCMFormat
	perRune   time.Duration
	delay     time.Duration
	gate      chan struct{}
	failure   error
	callCount int
	texts     []string
}

// NewMock creates a mock producing DefaultFormat audio, 10ms per rune.
func NewMock() *Mock {
	return &Mock{format: DefaultFormat, perRune: 10 * time.Millisecond}
}

func (m *Mock) Format() audio.PCMFormat { return m.format }

func (m *Mock) Synthesize(ctx context.Context, text string, voice book.Voice) ([]byte, error) {
	m.mu.Lock()
	m.callCount++
	m.texts = append(m.texts, text)
	failure, delay, gate := m.failure, m.delay, m.gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failure != nil {
		return nil, failure
	}

	frames := int(time.Duration(utf8.RuneCountInString(text)) * m.perRune * time.Duration(m.format.SampleRate) / time.Second)
	if frames == 0 {
		frames = 1
	}
	pcm := make([]byte, frames*m.format.FrameSize())
	for i := 0; i < frames; i++ {
		s := int16(8000 * math.Sin(2*math.Pi*220*float64(i)/float64(m.format.SampleRate)))
		for c := 0; c < m.format.Channels; c++ {
			binary.LittleEndian.PutUint16(pcm[(i*m.format.Channels+c)*2:], uint16(s))
		}
	}
	return pcm, nil
}

// Test control methods

// SetDelay sets the simulated processing delay.
func (m *Mock) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetFailure makes subsequent calls fail with err.
func (m *Mock) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}

// ClearFailure resets the mock to normal operation.
func (m *Mock) ClearFailure() {
	m.SetFailure(nil)
}

// Hold makes calls block until Release.
func (m *Mock) Hold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gate = make(chan struct{})
}

// Release unblocks held calls.
func (m *Mock) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gate != nil {
		close(m.gate)
		m.gate = nil
	}
}

// CallCount returns the number of Synthesize calls.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Texts returns the texts passed to Synthesize, in call order.
func (m *Mock) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}
