package runner

import (
	"context"
	"fmt"
	"strings"
)

// Response is a canned reply for a command line prefix.
type Response struct {
	// Prefix is matched against the rendered command line.
	Prefix string
	Output string
	Stderr string
	// Fail makes the command exit unsuccessfully.
	Fail bool
}

// Scripted is an Executor that replies from a script and records every call.
// Each response answers one call: the first unused response whose prefix
// matches is consumed.
type Scripted struct {
	Responses []Response
	Calls     []string
	used      []bool
}

func (s *Scripted) Output(_ context.Context, name string, args ...string) (string, error) {
	line := CommandLine(name, args...)
	s.Calls = append(s.Calls, line)

	resp, ok := s.next(line)
	if !ok {
		return "", &CommandError{Command: line, Stderr: "unexpected command", Err: fmt.Errorf("exit status 2")}
	}
	if resp.Fail {
		return "", &CommandError{Command: line, Stderr: resp.Stderr, Err: fmt.Errorf("exit status 1")}
	}
	return strings.TrimSpace(resp.Output), nil
}

func (s *Scripted) Attach(ctx context.Context, name string, args ...string) error {
	_, err := s.Output(ctx, name, args...)
	return err
}

// CallsWithPrefix returns the recorded calls starting with prefix
func (s *Scripted) CallsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range s.Calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Scripted) next(line string) (Response, bool) {
	if len(s.used) < len(s.Responses) {
		s.used = append(s.used, make([]bool, len(s.Responses)-len(s.used))...)
	}
	for i, r := range s.Responses {
		if s.used[i] || !strings.HasPrefix(line, r.Prefix) {
			continue
		}
		s.used[i] = true
		return r, true
	}
	return Response{}, false
}
