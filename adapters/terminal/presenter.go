// Package terminal renders reminder prompts in a terminal and reads the answer from a
// line editor. It stands in for a native modal dialog when the host is a CLI.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"

	"ratereminder/core"
	"ratereminder/engine"
)

// LineReader is the part of *readline.Instance the presenter needs.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// Presenter shows two-button prompts as a bordered box followed by a numbered choice.
type Presenter struct {
	out     io.Writer
	colored bool
	width   int
	open    func() (LineReader, error)

	mu sync.Mutex
	rl LineReader

	boxStyle    lipgloss.Style
	titleStyle  lipgloss.Style
	optionStyle lipgloss.Style
	hintStyle   lipgloss.Style
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithOutput redirects prompt rendering. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(p *Presenter) {
		if w != nil {
			p.out = w
		}
	}
}

// WithLineReader supplies the input source instead of opening a readline instance.
func WithLineReader(r LineReader) Option {
	return func(p *Presenter) {
		if r != nil {
			p.open = func() (LineReader, error) { return r, nil }
		}
	}
}

// WithColor toggles styled output.
func WithColor(colored bool) Option { return func(p *Presenter) { p.colored = colored } }

// WithWidth sets the box width in cells.
func WithWidth(w int) Option {
	return func(p *Presenter) {
		if w > 20 {
			p.width = w
		}
	}
}

func New(opts ...Option) *Presenter {
	p := &Presenter{out: os.Stdout, colored: true, width: 64}
	for _, o := range opts {
		o(p)
	}
	if p.open == nil {
		out := p.out
		p.open = func() (LineReader, error) {
			return readline.NewEx(&readline.Config{
				Prompt:          "> ",
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
				Stdout:          out,
			})
		}
	}
	p.initStyles()
	return p
}

func (p *Presenter) initStyles() {
	p.boxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(p.width)
	p.titleStyle = lipgloss.NewStyle().Bold(true)
	p.optionStyle = lipgloss.NewStyle()
	p.hintStyle = lipgloss.NewStyle().Italic(true)
	if p.colored {
		p.boxStyle = p.boxStyle.BorderForeground(lipgloss.Color("86"))
		p.titleStyle = p.titleStyle.Foreground(lipgloss.Color("81"))
		p.optionStyle = p.optionStyle.Foreground(lipgloss.Color("114"))
		p.hintStyle = p.hintStyle.Foreground(lipgloss.Color("245"))
	}
}

// PresentChoice blocks until the user picks an option. Answers are "1"/"2" or the
// button label, case-insensitively. EOF or an interrupt is returned as an error so it
// is never mistaken for a decision.
func (p *Presenter) PresentChoice(ctx context.Context, title, message, primary, secondary string) (core.Choice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rl, err := p.reader()
	if err != nil {
		return 0, err
	}
	if _, err := fmt.Fprintln(p.out, p.render(title, message, primary, secondary)); err != nil {
		return 0, fmt.Errorf("failed to render prompt: %w", err)
	}

	for {
		line, err := p.readLine(ctx, rl)
		if err != nil {
			return 0, err
		}
		if choice, ok := parseChoice(line, primary, secondary); ok {
			return choice, nil
		}
		fmt.Fprintln(p.out, p.hintStyle.Render(fmt.Sprintf("Please answer 1 (%s) or 2 (%s).", primary, secondary)))
	}
}

// Close releases the line editor, if one was opened.
func (p *Presenter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rl == nil {
		return nil
	}
	err := p.rl.Close()
	p.rl = nil
	return err
}

func (p *Presenter) reader() (LineReader, error) {
	if p.rl != nil {
		return p.rl, nil
	}
	rl, err := p.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal input: %w", err)
	}
	p.rl = rl
	return rl, nil
}

type lineResult struct {
	line string
	err  error
}

func (p *Presenter) readLine(ctx context.Context, rl LineReader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ch := make(chan lineResult, 1)
	go func() {
		line, err := rl.Readline()
		ch <- lineResult{line: line, err: err}
	}()
	select {
	case res := <-ch:
		if errors.Is(res.err, readline.ErrInterrupt) {
			return "", fmt.Errorf("prompt interrupted: %w", res.err)
		}
		return strings.TrimSpace(res.line), res.err
	case <-ctx.Done():
		// unblock the pending read; the reader cannot be reused afterwards
		_ = rl.Close()
		p.rl = nil
		return "", ctx.Err()
	}
}

func (p *Presenter) render(title, message, primary, secondary string) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		p.titleStyle.Render(title),
		"",
		message,
		"",
		p.optionStyle.Render("[1] "+primary)+"   "+p.optionStyle.Render("[2] "+secondary),
	)
	return p.boxStyle.Render(body)
}

func parseChoice(answer, primary, secondary string) (core.Choice, bool) {
	a := strings.ToLower(strings.TrimSpace(answer))
	switch {
	case a == "1" || (a != "" && a == strings.ToLower(strings.TrimSpace(primary))):
		return core.ChoicePrimary, true
	case a == "2" || (a != "" && a == strings.ToLower(strings.TrimSpace(secondary))):
		return core.ChoiceSecondary, true
	default:
		return 0, false
	}
}

var _ engine.Presenter = (*Presenter)(nil)
