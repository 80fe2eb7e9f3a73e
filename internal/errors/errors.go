package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"

	"github.com/julianstephens/sleepwatch/internal/logger"
)

// Format formats an error message with a consistent "Error: " prefix.
// Network failures get a short hint appended on a second line.
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\n  hint: " + hint
	}
	return msg
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint returns a remediation hint for transport failures, or "" when none applies.
func Hint(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return "the appliance refused the connection; check SLEEPWATCH_BASE_URL and that the gateway is running"
	case errors.Is(err, context.DeadlineExceeded):
		return "the appliance did not answer in time; raise SLEEPWATCH_TIMEOUT or check the network"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "the appliance did not answer in time; raise SLEEPWATCH_TIMEOUT or check the network"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "the appliance host name could not be resolved"
	}
	return ""
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
