// Package confirm implements the blocking operator checkpoints.
package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Affirmative is the only answer that approves a checkpoint
const Affirmative = "y"

// Gate asks the operator to approve proposed values.
type Gate interface {
	// Confirm shows proposed and blocks until the operator answers.
	// Only the affirmative token approves; everything else rejects.
	Confirm(prompt, proposed string) (bool, error)
	// Ask blocks until the operator enters a line of free text.
	Ask(prompt string) (string, error)
}

// IsAffirmative reports whether an answer approves a checkpoint. Only the
// line terminator is stripped; any other character rejects.
func IsAffirmative(answer string) bool {
	return strings.EqualFold(strings.TrimRight(answer, "\r\n"), Affirmative)
}

// Terminal reads answers from an input stream, one per line.
// There is no timeout: a checkpoint waits as long as the operator does.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

func (t *Terminal) Confirm(prompt, proposed string) (bool, error) {
	if proposed != "" {
		fmt.Fprintf(t.out, "\n%s\n", proposed)
	}
	fmt.Fprintf(t.out, "%s [y/N] ", prompt)

	answer, err := t.readLine()
	if err != nil {
		return false, err
	}
	return IsAffirmative(answer), nil
}

func (t *Terminal) Ask(prompt string) (string, error) {
	fmt.Fprintf(t.out, "%s ", prompt)
	answer, err := t.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// readLine treats a closed input as an empty answer
func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(t.out)
		return line, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return line, nil
}

// Static answers checkpoints from a fixed script, for non-interactive runs.
// When the script runs out every further checkpoint is rejected.
type Static struct {
	Answers []string
	// Prompts records every prompt that was shown
	Prompts []string
	// Proposed records the value shown with every confirmation
	Proposed []string
}

func (s *Static) Confirm(prompt, proposed string) (bool, error) {
	s.Proposed = append(s.Proposed, proposed)
	return IsAffirmative(s.next(prompt)), nil
}

func (s *Static) Ask(prompt string) (string, error) {
	return strings.TrimSpace(s.next(prompt)), nil
}

func (s *Static) next(prompt string) string {
	s.Prompts = append(s.Prompts, prompt)
	if len(s.Answers) == 0 {
		return ""
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer
}
