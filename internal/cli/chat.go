package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/docchat/internal/audio"
	"github.com/raphaelgruber/docchat/internal/chat"
	"github.com/raphaelgruber/docchat/internal/config"
	"github.com/raphaelgruber/docchat/internal/models"
	"github.com/raphaelgruber/docchat/internal/speech"
	"github.com/raphaelgruber/docchat/internal/store"
)

var (
	chatAudio bool
	chatVoice string
	chatTopK  int
	chatSim   float64
	chatTemp  float64
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation over the document corpus.

In-session commands:
  /new     start a fresh conversation
  /clear   clear the history (asks once for confirmation)
  /stats   show session and timing statistics
  /quit    exit

With --audio, each turn records from the microphone instead of reading a
typed question, and answers are spoken back in the selected voice.`,
	Example: `  docchat chat
  docchat chat --audio --voice nova
  docchat chat --top-k 5 --min-similarity 0.7`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatAudio, "audio", false, "record questions from the microphone and speak answers")
	chatCmd.Flags().StringVar(&chatVoice, "voice", "", "synthesis voice (alloy, echo, fable, onyx, nova, shimmer)")
	chatCmd.Flags().IntVar(&chatTopK, "top-k", 0, "number of passages to retrieve (1-10)")
	chatCmd.Flags().Float64Var(&chatSim, "min-similarity", -1, "minimum cosine similarity for context passages (0-1)")
	chatCmd.Flags().Float64Var(&chatTemp, "temperature", -1, "generation temperature (0-1)")
}

// chatRuntime bundles everything one interactive session needs.
type chatRuntime struct {
	pipeline *chat.Pipeline
	session  *chat.Session
	streamer *chat.Streamer
	opts     chat.Options
	voice    models.Voice

	// Audio modality; nil when disabled.
	input  *audio.Input
	output *audio.Output
}

func newChatRuntime(cmd *cobra.Command) (*chatRuntime, error) {
	engine, err := getEngine()
	if err != nil {
		return nil, err
	}
	model, err := getModel()
	if err != nil {
		return nil, err
	}

	opts := chat.Options{TopK: cfg.TopK, MinSimilarity: cfg.MinSimilarity, Temperature: cfg.Temperature}
	if cmd.Flags().Changed("top-k") {
		opts.TopK = chatTopK
	}
	if cmd.Flags().Changed("min-similarity") {
		opts.MinSimilarity = chatSim
	}
	if cmd.Flags().Changed("temperature") {
		opts.Temperature = chatTemp
	}

	voice := cfg.Voice
	if chatVoice != "" {
		voice, err = models.ParseVoice(chatVoice)
		if err != nil {
			return nil, err
		}
	}

	rt := &chatRuntime{
		pipeline: chat.NewPipeline(chat.NewAssembler(engine, cfg.MaxHistoryTurns), model, collector),
		session:  chat.NewSession(),
		streamer: chat.NewStreamer(cfg.StreamDelay),
		opts:     opts,
		voice:    voice,
	}

	if chatAudio || cfg.InputModality == config.ModalityAudio {
		speechCfg := cfg
		speechCfg.InputModality = config.ModalityAudio
		if err := speechCfg.Validate(); err != nil {
			return nil, err
		}
		whisper := speech.NewWhisperClient(cfg.WhisperEndpoint, cfg.WhisperAPIKey, cfg.WhisperAPIVersion, cfg.SpeechTimeout)
		rt.input = audio.NewInput(whisper, collector)
		if cfg.TTSEndpoint != "" && cfg.TTSAPIKey != "" {
			tts := speech.NewTTSClient(cfg.TTSEndpoint, cfg.TTSAPIKey, cfg.TTSAPIVersion, cfg.SpeechTimeout)
			rt.output = audio.NewOutput(tts, collector)
		}
	}

	return rt, nil
}

func runChat(cmd *cobra.Command, args []string) error {
	rt, err := newChatRuntime(cmd)
	if err != nil {
		return err
	}

	fmt.Println("Chat with your documents. Type /quit to exit, /stats for statistics.")
	if rt.input != nil {
		fmt.Println("Audio mode: press Enter to record a question, Enter again to stop.")
	}

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		var query string
		if rt.input != nil {
			query, err = recordQuestion(ctx, rt, scanner)
			if err != nil {
				if errors.Is(err, errSessionEnded) {
					return nil
				}
				fmt.Printf("Could not understand the recording, please try again. (%v)\n", err)
				continue
			}
			if handled, quit := handleCommand(rt, query); handled {
				if quit {
					return nil
				}
				continue
			}
			fmt.Printf("You: %s\n", query)
		} else {
			fmt.Print("You: ")
			if !scanner.Scan() {
				fmt.Println()
				return scanner.Err()
			}
			query = strings.TrimSpace(scanner.Text())
			if query == "" {
				continue
			}
			if handled, quit := handleCommand(rt, query); handled {
				if quit {
					return nil
				}
				continue
			}
		}

		answer(ctx, rt, query)
	}
}

// errSessionEnded signals a clean exit from the recording prompt.
var errSessionEnded = errors.New("session ended")

// recordQuestion captures one microphone clip and transcribes it.
// Typing a /command at the recording prompt runs it instead.
func recordQuestion(ctx context.Context, rt *chatRuntime, scanner *bufio.Scanner) (string, error) {
	fmt.Print("[Enter to record] ")
	if !scanner.Scan() {
		fmt.Println()
		return "", errSessionEnded
	}
	if typed := strings.TrimSpace(scanner.Text()); typed != "" {
		// Typed input at the prompt bypasses the microphone.
		return typed, nil
	}

	source, err := audio.NewMicSource()
	if err != nil {
		return "", err
	}
	recorder := audio.NewRecorder(source, 0)
	recorder.Start()

	fmt.Print("Recording... press Enter to stop. ")
	scanner.Scan()
	recorder.Stop()

	clip := recorder.Collect()
	if clip == nil {
		return "", errors.New("nothing recorded")
	}
	return rt.input.Transcribe(ctx, clip)
}

// answer runs one exchange and presents the reply.
func answer(ctx context.Context, rt *chatRuntime, query string) {
	reply, retrieved, err := runExchange("thinking", func() (string, []models.ScoredPassage, error) {
		return rt.pipeline.Exchange(ctx, rt.session, query, rt.opts)
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUnavailable):
			fmt.Println("The document store is unreachable; the question was not recorded. Try again in a moment.")
		default:
			fmt.Printf("That didn't work: %v\n", err)
		}
		return
	}

	if len(retrieved) == 0 {
		fmt.Println("(answering without document context)")
	}
	fmt.Print("Assistant: ")
	renderReply(reply, rt.streamer)

	if rt.output != nil {
		speak(ctx, rt, reply)
	}
}

// speak synthesizes and plays the reply. Failures degrade to text-only.
func speak(ctx context.Context, rt *chatRuntime, reply string) {
	clip := rt.output.Speak(ctx, reply, rt.voice)
	if clip == nil {
		fmt.Println("(voice playback unavailable for this answer)")
		return
	}
	playClip(clip)
}

// playClip plays synthesized audio through ffplay, falling back to
// writing the clip next to the temp dir when playback is unavailable.
func playClip(clip []byte) {
	f, err := os.CreateTemp("", "docchat-reply-*.mp3")
	if err != nil {
		return
	}
	path := f.Name()
	if _, err := f.Write(clip); err != nil {
		f.Close()
		os.Remove(path)
		return
	}
	f.Close()

	play := exec.Command("ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", path)
	if err := play.Run(); err != nil {
		fmt.Printf("(audio saved to %s)\n", path)
		return
	}
	os.Remove(path)
}

// handleCommand runs in-session slash commands. The second return value
// reports whether the session should end.
func handleCommand(rt *chatRuntime, query string) (handled, quit bool) {
	if !strings.HasPrefix(query, "/") {
		return false, false
	}
	switch query {
	case "/quit", "/exit":
		return true, true
	case "/new":
		rt.session.Reset()
		fmt.Println("Started a new conversation.")
	case "/clear":
		cleared, err := rt.session.Clear()
		switch {
		case err != nil:
			fmt.Printf("Cannot clear right now: %v\n", err)
		case cleared:
			fmt.Println("Conversation history cleared.")
		default:
			fmt.Println("This will erase the conversation history. Type /clear again to confirm.")
		}
	case "/stats":
		printStats(rt.session)
	default:
		fmt.Printf("Unknown command %q. Available: /new, /clear, /stats, /quit\n", query)
	}
	return true, false
}

// printStats shows session analytics and operation timings.
func printStats(session *chat.Session) {
	a := chat.Analyze(session.Turns())
	fmt.Printf("Messages: %d  Questions: %d\n", a.Messages, a.Questions)
	if len(a.ResponseTimes) > 0 {
		var total time.Duration
		for _, d := range a.ResponseTimes {
			total += d
		}
		fmt.Printf("Average response time: %s\n", (total / time.Duration(len(a.ResponseTimes))).Round(10*time.Millisecond))
	}

	snap := collector.Snapshot()
	if len(snap.Operations) == 0 {
		return
	}
	fmt.Println("Operations:")
	for op, s := range snap.Operations {
		fmt.Printf("  %-12s count=%d avg=%.0fms max=%dms\n", op, s.Count, s.AvgTimeMs, s.MaxTimeMs)
	}
}
