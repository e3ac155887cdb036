package cli

import (
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/raphaelgruber/docchat/internal/chat"
	"github.com/raphaelgruber/docchat/internal/models"
)

// Theme holds the color scheme for the chat display.
type Theme struct {
	Answer lipgloss.Color
	Hint   lipgloss.Color
	Error  lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Answer: lipgloss.Color("#5FAFD7"), // light blue
	Hint:   lipgloss.Color("#6C6C6C"), // dim gray
	Error:  lipgloss.Color("#FF005F"), // red
}

func (t Theme) answerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Answer)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// exchangeDoneMsg carries the result of a completed exchange.
type exchangeDoneMsg struct {
	reply     string
	retrieved []models.ScoredPassage
	err       error
}

// spinModel shows a spinner while the exchange runs.
type spinModel struct {
	spinner spinner.Model
	label   string
	run     func() exchangeDoneMsg
	result  exchangeDoneMsg
	done    bool
	theme   Theme
}

func newSpinModel(label string, run func() exchangeDoneMsg) spinModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return spinModel{spinner: sp, label: label, run: run, theme: defaultTheme}
}

// Init starts the spinner and kicks off the exchange.
func (m spinModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		// The exchange blocks; run it as a command to keep Update responsive.
		func() tea.Msg { return m.run() },
	)
}

// Update handles messages and returns the updated model.
func (m spinModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case exchangeDoneMsg:
		m.result = msg
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the spinner line, cleared once the exchange finishes.
func (m spinModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}
	return tea.NewView(m.spinner.View() + " " + m.theme.hintStyle().Render(m.label))
}

// runExchange runs fn behind a spinner when stdout is a terminal, or
// directly when output is piped.
func runExchange(label string, fn func() (string, []models.ScoredPassage, error)) (string, []models.ScoredPassage, error) {
	wrapped := func() exchangeDoneMsg {
		reply, retrieved, err := fn()
		return exchangeDoneMsg{reply: reply, retrieved: retrieved, err: err}
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		res := wrapped()
		return res.reply, res.retrieved, res.err
	}

	p := tea.NewProgram(newSpinModel(label, wrapped))
	final, err := p.Run()
	if err != nil {
		// The exchange command may already be in flight; do not rerun it.
		return "", nil, err
	}
	res := final.(spinModel).result
	return res.reply, res.retrieved, res.err
}

// chunkMsg carries the next revealed fragment of the answer.
type chunkMsg string

// streamDoneMsg signals that the full answer has been revealed.
type streamDoneMsg struct{}

// streamModel is the bubbletea model for the incremental answer reveal.
type streamModel struct {
	chunks   <-chan string
	revealed strings.Builder
	done     bool
	theme    Theme
}

func newStreamModel(chunks <-chan string) streamModel {
	return streamModel{chunks: chunks, theme: defaultTheme}
}

// Init returns the initial command (wait for the first chunk).
func (m streamModel) Init() tea.Cmd {
	return m.nextChunk()
}

// Update handles messages and returns the updated model.
func (m streamModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			// Reveal everything that is left and stop pacing.
			for chunk := range m.chunks {
				m.revealed.WriteString(chunk)
			}
			m.done = true
			return m, tea.Quit
		}

	case chunkMsg:
		m.revealed.WriteString(string(msg))
		return m, m.nextChunk()

	case streamDoneMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the answer revealed so far.
func (m streamModel) View() tea.View {
	text := m.theme.answerStyle().Render(m.revealed.String())
	if m.done {
		return tea.NewView(text + "\n")
	}
	return tea.NewView(text)
}

// nextChunk waits for the next fragment from the streamer goroutine.
// Runs as a command to avoid blocking Update().
func (m streamModel) nextChunk() tea.Cmd {
	return func() tea.Msg {
		chunk, ok := <-m.chunks
		if !ok {
			return streamDoneMsg{}
		}
		return chunkMsg(chunk)
	}
}

// renderReply shows the answer with a paced sentence-by-sentence reveal
// on a terminal, or prints it directly when output is piped.
func renderReply(reply string, streamer *chat.Streamer) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Println(reply)
		return
	}

	chunks := make(chan string)
	go func() {
		defer close(chunks)
		streamer.Stream(reply, func(chunk string) {
			chunks <- chunk
		})
	}()

	p := tea.NewProgram(newStreamModel(chunks))
	if _, err := p.Run(); err != nil {
		// Drain the producer, then fall back to plain output.
		for range chunks {
		}
		fmt.Println(reply)
	}
}
