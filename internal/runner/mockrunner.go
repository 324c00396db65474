package runner

import (
	"context"
	"strings"
	"time"
)

type MockRunner struct {
	Commands     []MockCommand
	Responses    map[string]MockResponse
	ResponseFunc func(name string, args ...string) ([]byte, error)
}

type MockCommand struct {
	Name    string
	Args    []string
	Timeout time.Duration
	Mode    Mode
}

type MockResponse struct {
	Output []byte
	Error  error
}

func NewMockRunner() *MockRunner {
	return &MockRunner{
		Commands:  []MockCommand{},
		Responses: make(map[string]MockResponse),
	}
}

func (m *MockRunner) Run(
	ctx context.Context,
	timeout time.Duration,
	mode Mode,
	name string,
	args ...string,
) ([]byte, error) {
	m.Commands = append(m.Commands, MockCommand{
		Name:    name,
		Args:    args,
		Timeout: timeout,
		Mode:    mode,
	})

	key := CmdKey(name, args...)
	if resp, ok := m.Responses[key]; ok {
		return resp.Output, resp.Error
	}
	if m.ResponseFunc != nil {
		return m.ResponseFunc(name, args...)
	}
	if mode == Stream {
		return nil, nil
	}
	return []byte{}, nil
}

// AddResponse registers the result for the command identified by
// CmdKey(name, args...).
func (m *MockRunner) AddResponse(key string, output []byte, err error) {
	m.Responses[key] = MockResponse{
		Output: output,
		Error:  err,
	}
}

// CmdKey joins name and args with "|".
func CmdKey(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), "|")
}

func (m *MockRunner) VerifyCommand(name string, args ...string) bool {
	for _, cmd := range m.Commands {
		if cmd.Name == name && argsEqual(cmd.Args, args) {
			return true
		}
	}
	return false
}

func (m *MockRunner) VerifyRunCount(name string, count int) bool {
	runCount := 0
	for _, cmd := range m.Commands {
		if cmd.Name == name {
			runCount++
		}
	}
	return runCount == count
}

func argsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
