package audio

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"sync"
)

// FrameSize is the fixed capture frame size in bytes.
const FrameSize = 4096

// defaultQueueSize bounds the capture queue; at 44.1kHz mono 16-bit this
// holds roughly a minute of audio.
const defaultQueueSize = 1536

// FrameSource produces fixed-size audio frames, typically from a
// microphone. Close must unblock any in-flight ReadFrame.
type FrameSource interface {
	ReadFrame(buf []byte) (int, error)
	Close() error
}

// Recorder captures live audio: one producer goroutine reads frames from
// the source into a bounded queue, and Collect drains the queue after the
// stop signal. Stopping is idempotent and never drops already-queued
// frames.
type Recorder struct {
	source   FrameSource
	frames   chan []byte
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewRecorder creates a recorder over the given source.
// queueSize of 0 uses the default bound.
func NewRecorder(source FrameSource, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Recorder{
		source: source,
		frames: make(chan []byte, queueSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the capture producer. It returns immediately; frames
// accumulate until Stop.
func (r *Recorder) Start() {
	go func() {
		defer close(r.frames)
		defer close(r.done)
		buf := make([]byte, FrameSize)
		for {
			n, err := r.source.ReadFrame(buf)
			if n > 0 {
				frame := make([]byte, n)
				copy(frame, buf[:n])
				select {
				case r.frames <- frame:
				case <-r.stop:
					// Queue the final frame if there is room; a full
					// queue at shutdown loses only this last read.
					select {
					case r.frames <- frame:
					default:
					}
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					slog.Debug("capture source closed", "error", err)
				}
				return
			}
			select {
			case <-r.stop:
				return
			default:
			}
		}
	}()
}

// Stop signals the producer to finish and unblocks its current read.
// Safe to call multiple times.
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
		if err := r.source.Close(); err != nil {
			slog.Debug("closing capture source", "error", err)
		}
	})
}

// Collect waits for the producer to exit, concatenates all captured frames
// in arrival order and wraps them in a WAV container. Call after Stop
// (or after the source is exhausted).
func (r *Recorder) Collect() []byte {
	<-r.done

	var pcm []byte
	for frame := range r.frames {
		pcm = append(pcm, frame...)
	}
	if len(pcm) == 0 {
		return nil
	}
	return EncodeWAV(pcm, SampleRate, Channels, BitsPerSample)
}

// micSource captures microphone audio through an ffmpeg subprocess
// emitting raw 16-bit little-endian PCM on stdout.
type micSource struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

// NewMicSource starts a microphone capture subprocess for the current
// platform.
func NewMicSource() (FrameSource, error) {
	var args []string
	switch runtime.GOOS {
	case "darwin":
		args = []string{"-f", "avfoundation", "-i", ":default"}
	case "linux":
		args = []string{"-f", "alsa", "-i", "default"}
	default:
		return nil, fmt.Errorf("microphone capture not supported on %s", runtime.GOOS)
	}
	args = append(args,
		"-ar", fmt.Sprint(SampleRate),
		"-ac", fmt.Sprint(Channels),
		"-f", "s16le",
		"-loglevel", "error",
		"-",
	)

	cmd := exec.Command("ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("mic capture pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mic capture (is ffmpeg installed?): %w", err)
	}
	return &micSource{cmd: cmd, stdout: stdout}, nil
}

func (m *micSource) ReadFrame(buf []byte) (int, error) {
	return io.ReadFull(m.stdout, buf)
}

func (m *micSource) Close() error {
	m.stdout.Close()
	if m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
	}
	return m.cmd.Wait()
}
