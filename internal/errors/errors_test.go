package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "connection refused",
			err:      fmt.Errorf("fetch sensors: %w", syscall.ECONNREFUSED),
			expected: "Error: fetch sensors: connection refused\n  hint: the appliance refused the connection; check SLEEPWATCH_BASE_URL and that the gateway is running",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("rating %d is out of range", 11)
	if got != "Error: rating 11 is out of range" {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestHint(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		empty bool
	}{
		{"deadline", fmt.Errorf("daily: %w", context.DeadlineExceeded), false},
		{"dns", &net.DNSError{Err: "no such host", Name: "appliance.local"}, false},
		{"plain", errors.New("boom"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Hint(tt.err); (got == "") != tt.empty {
				t.Errorf("Hint(%v) = %q, want empty=%v", tt.err, got, tt.empty)
			}
		})
	}
}

// TestFatal runs Fatal in a subprocess and checks the exit code and message.
func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(errors.New("test error"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatal")
	cmd.Env = append(os.Environ(), "GO_TEST_FATAL=1")
	var stderr strings.Builder
	cmd.Stderr = &stderr
	err := cmd.Run()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	if !strings.Contains(stderr.String(), "Error: test error") {
		t.Errorf("expected stderr to contain error message, got %q", stderr.String())
	}
}
