//go:build linux

package meter

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// openPTY allocates a pseudo-terminal and returns the path of its slave side.
//
//nolint:gosec // G115: fd values are small non-negative integers
func openPTY(t *testing.T) string {
	t.Helper()
	master, err := os.OpenFile("/dev/ptmx", os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		t.Skipf("no pty support: %v", err)
	}
	t.Cleanup(func() { master.Close() })

	fd := int(master.Fd())
	if err := unix.IoctlSetPointerInt(fd, unix.TIOCSPTLCK, 0); err != nil {
		t.Skipf("unlockpt: %v", err)
	}
	n, err := unix.IoctlGetUint32(fd, unix.TIOCGPTN)
	if err != nil {
		t.Skipf("ptsname: %v", err)
	}
	return fmt.Sprintf("/dev/pts/%d", n)
}

func TestNextFile_TerminalIsNotACollision(t *testing.T) {
	pts := openPTY(t)

	out, err := os.OpenFile(pts, os.O_WRONLY|unix.O_NOCTTY, 0)
	require.NoError(t, err)
	t.Cleanup(func() { out.Close() })

	st, rec := newTestState(t, pts)
	st.Stdout = out

	f, err := st.NextFile(0, nil)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	assert.Equal(t, pts, st.CurrentFile)
	assert.True(t, st.Status.Empty())
	assert.Empty(t, rec.msgs)
}
