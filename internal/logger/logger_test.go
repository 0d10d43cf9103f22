package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withCapturedOutput(t *testing.T, verbose bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verbose)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestVerboseToggle(t *testing.T) {
	defer SetVerbose(false)

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_OnlyWhenVerbose(t *testing.T) {
	buf := withCapturedOutput(t, false)
	Debug("dropped %s", "message")
	assert.Zero(t, buf.Len())

	SetVerbose(true)
	Debug("kept %s", "message")
	assert.Equal(t, "[DEBUG] kept message\n", buf.String())
}

func TestLevels(t *testing.T) {
	buf := withCapturedOutput(t, true)

	Info("info message %d", 42)
	assert.Equal(t, "[INFO] info message 42\n", buf.String())
	buf.Reset()

	Warn("warning message")
	assert.Equal(t, "[WARN] warning message\n", buf.String())
	buf.Reset()

	Section("Pipeline")
	assert.Equal(t, "\n=== Pipeline ===\n", buf.String())
}

func TestConcurrentAccess(t *testing.T) {
	buf := withCapturedOutput(t, true)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Debug("concurrent %d", n)
			IsVerbose()
		}(i)
	}
	wg.Wait()

	// All writes land intact; the exact interleaving doesn't matter.
	assert.NotZero(t, buf.Len())
}
