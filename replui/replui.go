// Package replui implements the interactive Read-Eval-Print Loop for afed
// documents: one line in, one Binding evaluated, one value or error shown.
//
// This is Kong's repl package repurposed rather than rewritten from
// scratch: the Bubble Tea model, styling, history list, and multiline
// bracket-balancing logic are kept nearly verbatim, since none of that
// machinery is Monkey-specific. What changes is what happens on Enter —
// instead of compiling a Monkey program into bytecode and running it on a
// vm.Machine, each line is handed to a live ns.Namespace's Define and, on
// success, an arity-0 binding is immediately evaluated with eval.Eval; a
// function definition is only reported as defined.
package replui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/afed-lang/afed/eval"
	"github.com/afed-lang/afed/ns"
)

const (
	// Prompt is the default prompt for the REPL.
	Prompt = ">> "

	// ContPrompt is the continuation prompt used while a line's
	// parentheses are still unbalanced.
	ContPrompt = ".. "
)

// Options configures the REPL's presentation.
type Options struct {
	NoColor bool // Disable styled output.
}

// Start initializes and runs the REPL with the given username and options.
func Start(username string, options Options) {
	p := tea.NewProgram(initialModel(username, options))
	if _, err := p.Run(); err != nil {
		fmt.Println("Error running program:", err)
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87"))

	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))
)

// evalResultMsg is the async result of evaluating one line.
type evalResultMsg struct {
	output  string
	isError bool
	elapsed time.Duration
}

type historyEntry struct {
	input          string
	output         string
	isError        bool
	evaluationTime time.Duration
}

type model struct {
	textInput       textinput.Model
	history         []historyEntry
	space           *ns.Namespace
	username        string
	evaluating      bool
	currentInput    string
	multilineBuffer string
	isMultiline     bool
	spinner         spinner.Model
	options         Options
}

func (m model) applyStyle(style lipgloss.Style, text string) string {
	if m.options.NoColor {
		return text
	}
	return style.Render(text)
}

func initialModel(username string, options Options) model {
	ti := textinput.New()
	ti.Placeholder = "label: expr  (or just expr =)"
	ti.Focus()
	ti.Width = 80
	ti.Prompt = promptStyle.Render(Prompt)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return model{
		textInput: ti,
		space:     ns.New(false),
		username:  username,
		spinner:   s,
		options:   options,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// isBalanced reports whether input's parentheses are balanced, the same
// test used outside parentheses to decide whether a newline ends the
// expression or just continues it across lines.
func isBalanced(input string) bool {
	depth := 0
	for _, c := range input {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// evalCmd defines line against space and, on success, evaluates the
// resulting binding. A line that declared parameters is not evaluated;
// it reports "name/arity defined" instead, and the function can be
// called from a later line.
func evalCmd(line string, space *ns.Namespace) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		b, _, err := space.Define(line, 1)
		if err != nil {
			return evalResultMsg{output: err.Error(), isError: true, elapsed: time.Since(start)}
		}

		if b.Arity > 0 {
			return evalResultMsg{
				output:  fmt.Sprintf("%s/%d defined", b.Name, b.Arity),
				elapsed: time.Since(start),
			}
		}

		v, evalErr := eval.Eval(b)
		if evalErr != nil {
			return evalResultMsg{output: evalErr.Error(), isError: true, elapsed: time.Since(start)}
		}
		return evalResultMsg{output: v.String(), elapsed: time.Since(start)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.evaluating {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case evalResultMsg:
		m.evaluating = false
		m.history = append(m.history, historyEntry{
			input:          m.currentInput,
			output:         msg.output,
			isError:        msg.isError,
			evaluationTime: msg.elapsed,
		})
		m.currentInput = ""
		return m, nil

	case tea.KeyMsg:
		if m.evaluating && msg.Type != tea.KeyCtrlC {
			return m, m.spinner.Tick
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyEnter:
			input := m.textInput.Value()
			if input == "" {
				if m.isMultiline {
					if m.multilineBuffer == "" {
						m.isMultiline = false
						return m, nil
					}
					return m.startEval(m.multilineBuffer)
				}
				return m, nil
			}

			if m.isMultiline {
				m.multilineBuffer += "\n" + input
				m.textInput.SetValue("")
				if isBalanced(m.multilineBuffer) {
					return m.startEval(m.multilineBuffer)
				}
				return m, nil
			}

			if !isBalanced(input) {
				m.isMultiline = true
				m.multilineBuffer = input
				m.textInput.SetValue("")
				return m, nil
			}

			return m.startEval(input)
		}
	}

	if !m.evaluating {
		m.textInput, cmd = m.textInput.Update(msg)
	}
	if m.evaluating {
		return m, m.spinner.Tick
	}
	return m, cmd
}

func (m model) startEval(buffer string) (tea.Model, tea.Cmd) {
	m.evaluating = true
	m.currentInput = buffer
	m.textInput.SetValue("")
	m.isMultiline = false
	m.multilineBuffer = ""
	return m, evalCmd(buffer, m.space)
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(m.applyStyle(titleStyle, " afed REPL "))
	s.WriteString("\n")
	if m.username != "" {
		s.WriteString(fmt.Sprintf("\nHello %s! Enter document lines one at a time.\n", m.username))
	}
	s.WriteString("\n")

	for _, entry := range m.history {
		lines := strings.Split(entry.input, "\n")
		for i, line := range lines {
			if i == 0 {
				s.WriteString(m.applyStyle(promptStyle, Prompt))
			} else {
				s.WriteString(m.applyStyle(promptStyle, ContPrompt))
			}
			s.WriteString(line)
			s.WriteString("\n")
		}

		if entry.isError {
			s.WriteString(m.applyStyle(errorStyle, entry.output))
		} else {
			s.WriteString(m.applyStyle(resultStyle, entry.output))
		}
		s.WriteString(m.applyStyle(historyStyle, fmt.Sprintf("  (%s)", entry.evaluationTime.Round(time.Microsecond))))
		s.WriteString("\n\n")
	}

	if m.evaluating {
		s.WriteString(m.spinner.View())
		s.WriteString(" evaluating...\n")
	} else if m.isMultiline {
		s.WriteString(m.applyStyle(promptStyle, ContPrompt))
		s.WriteString(m.textInput.View())
		s.WriteString("\n")
	} else {
		s.WriteString(m.textInput.View())
		s.WriteString("\n")
	}

	s.WriteString("\n(Ctrl+C or Ctrl+D to exit)\n")
	return s.String()
}
