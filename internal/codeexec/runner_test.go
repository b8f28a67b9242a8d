package codeexec

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureHeadlessMatplotlib(t *testing.T) {
	code := "import matplotlib.pyplot as plt\nplt.plot([1,2])\n"
	safe := EnsureHeadlessMatplotlib(code)
	assert.True(t, strings.HasPrefix(safe, "import matplotlib\nmatplotlib.use('Agg')\n"))

	// Already-headless scripts are left alone.
	assert.Equal(t, safe, EnsureHeadlessMatplotlib(safe))
}

func writeScript(t *testing.T, code string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.py")
	// The marker comment skips the matplotlib prepend so these tests do not
	// depend on matplotlib being installed.
	require.NoError(t, os.WriteFile(path, []byte("# matplotlib.use('Agg')\n"+code), 0644))
	return path
}

func requirePython(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
}

func TestRunCapturesOutput(t *testing.T) {
	requirePython(t)

	runner := NewRunner()
	output, err := runner.Run(context.Background(), writeScript(t, "print('hello')\n"))
	require.NoError(t, err)
	assert.Contains(t, output, "[STDOUT]")
	assert.Contains(t, output, "hello")
}

func TestRunCapturesStderr(t *testing.T) {
	requirePython(t)

	runner := NewRunner()
	output, err := runner.Run(context.Background(), writeScript(t, "import sys\nsys.stderr.write('boom')\n"))
	require.NoError(t, err)
	assert.Contains(t, output, "[STDERR]")
	assert.Contains(t, output, "boom")
}

func TestRunNoOutput(t *testing.T) {
	requirePython(t)

	runner := NewRunner()
	output, err := runner.Run(context.Background(), writeScript(t, "x = 1\n"))
	require.NoError(t, err)
	assert.Equal(t, "Script executed successfully but produced no output.", output)
}
