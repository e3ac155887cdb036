package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"sync"
	"testing"
	"time"
)

// scriptSource emits a fixed set of frames, then blocks until closed.
type scriptSource struct {
	frames    [][]byte
	idx       int
	emitted   chan struct{} // closed once the last scripted frame is read
	unblock   chan struct{} // closed by Close
	closeOnce sync.Once
}

func newScriptSource(frames ...[]byte) *scriptSource {
	return &scriptSource{
		frames:  frames,
		emitted: make(chan struct{}),
		unblock: make(chan struct{}),
	}
}

func (s *scriptSource) ReadFrame(buf []byte) (int, error) {
	if s.idx < len(s.frames) {
		n := copy(buf, s.frames[s.idx])
		s.idx++
		if s.idx == len(s.frames) {
			close(s.emitted)
		}
		return n, nil
	}
	<-s.unblock
	return 0, io.EOF
}

func (s *scriptSource) Close() error {
	s.closeOnce.Do(func() { close(s.unblock) })
	return nil
}

func TestRecorderKeepsQueuedFramesOnStop(t *testing.T) {
	frames := [][]byte{
		bytes.Repeat([]byte{0x01}, 8),
		bytes.Repeat([]byte{0x02}, 8),
		bytes.Repeat([]byte{0x03}, 8),
	}
	source := newScriptSource(frames...)
	recorder := NewRecorder(source, 16)
	recorder.Start()

	select {
	case <-source.emitted:
	case <-time.After(time.Second):
		t.Fatal("producer never consumed the scripted frames")
	}

	// Stop is idempotent.
	recorder.Stop()
	recorder.Stop()

	clip := recorder.Collect()
	if clip == nil {
		t.Fatal("no clip collected")
	}

	wantPCM := bytes.Join(frames, nil)
	gotPCM := clip[44:] // after the WAV header
	if !bytes.Equal(gotPCM, wantPCM) {
		t.Errorf("collected PCM = %x, want %x (frames concatenated in arrival order)", gotPCM, wantPCM)
	}
}

func TestRecorderEmptyCapture(t *testing.T) {
	source := newScriptSource()
	recorder := NewRecorder(source, 4)
	recorder.Start()
	recorder.Stop()

	if clip := recorder.Collect(); clip != nil {
		t.Errorf("empty capture produced %d bytes, want nil", len(clip))
	}
}

func TestRecorderSourceExhaustion(t *testing.T) {
	source := newScriptSource([]byte{0xAA, 0xBB})
	source.Close() // next read after the script returns EOF immediately
	recorder := NewRecorder(source, 4)
	recorder.Start()

	clip := recorder.Collect()
	if clip == nil {
		t.Fatal("no clip collected from exhausted source")
	}
	if !bytes.Equal(clip[44:], []byte{0xAA, 0xBB}) {
		t.Errorf("collected PCM = %x", clip[44:])
	}
}

func TestEncodeWAVHeader(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	wav := EncodeWAV(pcm, 44100, 1, 16)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("wav length = %d, want %d", len(wav), 44+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 44100 {
		t.Errorf("sample rate = %d, want 44100", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Errorf("data size = %d, want %d", got, len(pcm))
	}
	if !bytes.Equal(wav[44:], pcm) {
		t.Error("PCM payload mismatch")
	}
}
