package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// Eventually polls condition every 10ms and fails the test if it is still
// false after timeout.
func Eventually(t *testing.T, timeout time.Duration, condition func() bool, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	if message == "" {
		message = "condition not met within " + timeout.String()
	}
	t.Fatal(message)
}

// WaitForLine waits until the file at path contains a line holding substr
// and returns that line. Async file sinks write in the background, so
// tests poll rather than read once.
func WaitForLine(t *testing.T, fs afero.Fs, path, substr string, timeout time.Duration) string {
	t.Helper()

	var found string
	Eventually(t, timeout, func() bool {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return false
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.Contains(line, substr) {
				found = line
				return true
			}
		}
		return false
	}, "no line containing "+substr+" in "+path)
	return found
}
