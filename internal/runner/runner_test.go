package runner

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandLine(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "plain", args: []string{"ad", "app", "list"}, want: "az ad app list"},
		{name: "spaces quoted", args: []string{"--role", "User Access Administrator"}, want: `az --role "User Access Administrator"`},
		{name: "single quotes quoted", args: []string{"--filter", "displayName eq 'sp-dev-azure'"}, want: `az --filter "displayName eq 'sp-dev-azure'"`},
		{name: "empty quoted", args: []string{"--language", ""}, want: `az --language ""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommandLine("az", tt.args...))
		})
	}
}

func TestRunnerOutput(t *testing.T) {
	r := NewRunner(nil, &bytes.Buffer{}, &bytes.Buffer{}, nil)

	out, err := r.Output(context.Background(), "sh", "-c", "echo '  hello  '")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestRunnerOutputFailure(t *testing.T) {
	r := NewRunner(nil, &bytes.Buffer{}, &bytes.Buffer{}, nil)

	_, err := r.Output(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, "boom", cmdErr.Stderr)
	assert.Contains(t, err.Error(), "exit status 3")
}

func TestRunnerAttach(t *testing.T) {
	var stdout bytes.Buffer
	r := NewRunner(bytes.NewBufferString("typed\n"), &stdout, &bytes.Buffer{}, nil)

	require.NoError(t, r.Attach(context.Background(), "sh", "-c", "read line; echo got $line"))
	assert.Equal(t, "got typed\n", stdout.String())
}

func TestScripted(t *testing.T) {
	s := &Scripted{Responses: []Response{
		{Prefix: "az ad app list", Output: "[]"},
		{Prefix: "az ad app list", Output: `["a"]`},
		{Prefix: "az ad app create", Fail: true, Stderr: "denied"},
	}}
	ctx := context.Background()

	out, err := s.Output(ctx, "az", "ad", "app", "list")
	require.NoError(t, err)
	assert.Equal(t, "[]", out)

	out, err = s.Output(ctx, "az", "ad", "app", "list")
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, out)

	_, err = s.Output(ctx, "az", "ad", "app", "create")
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, "denied", cmdErr.Stderr)

	_, err = s.Output(ctx, "az", "ad", "app", "list")
	require.Error(t, err, "responses are consumed once")

	assert.Len(t, s.CallsWithPrefix("az ad app list"), 3)
}
