package meter

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

// recorder collects reported diagnostics.
type recorder struct {
	msgs []string
}

func (r *recorder) Report(msg string) { r.msgs = append(r.msgs, msg) }

// newTestState returns a State whose stdin and stdout are empty regular
// files in a temp dir, so nothing touches the test process's streams.
func newTestState(t *testing.T, inputs ...string) (*State, *recorder) {
	t.Helper()
	dir := t.TempDir()

	stdin, err := os.Create(filepath.Join(dir, "stdin"))
	require.NoError(t, err)
	t.Cleanup(func() { stdin.Close() })

	stdout, err := os.Create(filepath.Join(dir, "stdout"))
	require.NoError(t, err)
	t.Cleanup(func() { stdout.Close() })

	rec := &recorder{}
	return &State{
		Inputs:   inputs,
		Stdin:    stdin,
		Stdout:   stdout,
		Reporter: rec,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, rec
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func mkfifo(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, syscall.Mkfifo(path, 0o600))
	return path
}

// openStdin replaces st.Stdin with a read-only handle on a file holding data.
func openStdin(t *testing.T, st *State, data []byte) *os.File {
	t.Helper()
	path := writeFile(t, t.TempDir(), "stdin-data", data)
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	st.Stdin = f
	return f
}

// blockDevice returns the block device named by PIPEMETER_TEST_BLOCKDEV and
// its size, skipping the test when none is configured.
func blockDevice(t *testing.T) (string, int64) {
	t.Helper()
	dev := os.Getenv("PIPEMETER_TEST_BLOCKDEV")
	if dev == "" {
		t.Skip("PIPEMETER_TEST_BLOCKDEV not set")
	}
	f, err := os.Open(dev)
	require.NoError(t, err)
	defer f.Close()
	size, err := f.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	return dev, size
}
