package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"lazy-tourist-be/pkg/planner/orchestrator"
	"lazy-tourist-be/pkg/planner/state"

	"github.com/fatih/color"
)

// Conversation is the driver surface the terminal loop needs.
type Conversation interface {
	Start(ctx context.Context, text string) (*state.Session, error)
	Resume(ctx context.Context, id, text string) (*state.Session, error)
	Abort(ctx context.Context, id, reason string) (*state.Session, error)
}

var (
	assistantColor = color.New(color.FgCyan)
	successColor   = color.New(color.FgGreen)
	errorColor     = color.New(color.FgRed)
	hintColor      = color.New(color.FgYellow)
)

func isExitWord(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "exit", "quit", "q":
		return true
	}
	return false
}

// Terminal runs one planning session over a line-oriented reader and writer.
type Terminal struct {
	conv Conversation
	in   *bufio.Scanner
	out  io.Writer
}

func NewTerminal(conv Conversation, in io.Reader, out io.Writer) *Terminal {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Terminal{conv: conv, in: scanner, out: out}
}

func (t *Terminal) readLine(prompt string) (string, bool) {
	fmt.Fprint(t.out, prompt)
	if !t.in.Scan() {
		return "", false
	}
	return t.in.Text(), true
}

// Run plans a trip starting from request, asking for it when empty, and
// returns the process exit code.
func (t *Terminal) Run(ctx context.Context, request string) int {
	if strings.TrimSpace(request) == "" {
		assistantColor.Fprintln(t.out, "Where would you like to go? Tell me about your trip (origin, destination, dates, travelers, budget).")
		line, ok := t.readLine("> ")
		if !ok {
			return ExitInputClosed
		}
		if isExitWord(line) {
			return ExitOK
		}
		request = line
	}

	s, err := t.conv.Start(ctx, request)
	if err != nil {
		errorColor.Fprintf(t.out, "Could not start planning: %v\n", err)
		return ExitFailure
	}

	for {
		t.render(s)
		if s.Done() {
			return t.finish(s)
		}

		line, ok := t.readLine("> ")
		if !ok {
			t.abort(ctx, s.ID, "input stream closed")
			return ExitInputClosed
		}
		if isExitWord(line) {
			t.abort(ctx, s.ID, "user exited")
			assistantColor.Fprintln(t.out, "Goodbye! Your itinerary was not saved.")
			return ExitOK
		}

		next, err := t.conv.Resume(ctx, s.ID, line)
		if errors.Is(err, orchestrator.ErrTurnLimit) {
			errorColor.Fprintln(t.out, "We've gone back and forth too many times. Please start a new plan.")
			return ExitFailure
		}
		if err != nil {
			errorColor.Fprintf(t.out, "Something went wrong: %v\n", err)
			return ExitFailure
		}
		s = next
	}
}

func (t *Terminal) render(s *state.Session) {
	if s.ShowItinerary && s.FinalItinerary != "" && s.Suspended() {
		fmt.Fprintln(t.out)
		fmt.Fprintln(t.out, s.FinalItinerary)
	}
	if s.AssistantResponse != "" && !s.Done() {
		assistantColor.Fprintln(t.out, s.AssistantResponse)
	}
	if s.Suspended() && s.NextStep == state.NodeGetFeedback {
		hintColor.Fprintln(t.out, "Ask a question, describe a change, or press Enter to save.")
	}
}

func (t *Terminal) finish(s *state.Session) int {
	switch s.Status {
	case state.StatusCompleted:
		successColor.Fprintln(t.out, s.AssistantResponse)
		return ExitOK
	case state.StatusAborted:
		return ExitOK
	default:
		errorColor.Fprintf(t.out, "Planning failed: %s\n", s.Error)
		return ExitFailure
	}
}

func (t *Terminal) abort(ctx context.Context, id, reason string) {
	if _, err := t.conv.Abort(ctx, id, reason); err != nil {
		errorColor.Fprintf(t.out, "Could not close the session cleanly: %v\n", err)
	}
}
