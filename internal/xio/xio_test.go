package xio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFASTQ(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "@read%d\nACGTACGTAC\n+\nIIIIIIIIII\n", i)
	}
	return sb.String()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		magic []byte
		want  Format
	}{
		{[]byte{0x1f, 0x8b, 0x08, 0x00}, Gzip},
		{[]byte{0x28, 0xb5, 0x2f, 0xfd}, Zstd},
		{[]byte("@rea"), Plain},
		{[]byte{0x1f}, Plain},
		{nil, Plain},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectFormat(tt.magic), "%x", tt.magic)
	}
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, Gzip, FormatFromPath("reads.fastq.gz"))
	assert.Equal(t, Zstd, FormatFromPath("reads.fq.zst"))
	assert.Equal(t, Plain, FormatFromPath("reads.fastq"))
	assert.Equal(t, Plain, FormatFromPath(Stdio))
}

func TestRoundTrip(t *testing.T) {
	content := sampleFASTQ(500)

	for _, name := range []string{"out.fastq", "out.fastq.gz", "out.fastq.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			w, err := Create(path, 0)
			require.NoError(t, err)
			_, err = io.WriteString(w, content)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, FormatFromPath(name), DetectFormat(raw))

			r, err := Open(path)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, content, string(got))
		})
	}
}

func TestCompressionLevel(t *testing.T) {
	content := sampleFASTQ(50)
	for _, f := range []Format{Gzip, Zstd} {
		var buf bytes.Buffer
		w, err := NewWriter(&buf, f, 9)
		require.NoError(t, err)
		_, err = io.WriteString(w, content)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		r, err := NewReader(&buf)
		require.NoError(t, err)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, content, string(got), f.String())
	}
}

func TestNewReaderShortInput(t *testing.T) {
	r, err := NewReader(strings.NewReader("@"))
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "@", string(got))

	r, err = NewReader(strings.NewReader(""))
	require.NoError(t, err)
	got, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.fastq"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompressionThreads(t *testing.T) {
	t.Setenv(ThreadsEnv, "3")
	assert.Equal(t, 3, CompressionThreads())

	t.Setenv(ThreadsEnv, "1000")
	assert.Equal(t, maxThreads, CompressionThreads())

	t.Setenv(ThreadsEnv, "zero")
	assert.GreaterOrEqual(t, CompressionThreads(), 1)
}

func TestIsBrokenPipe(t *testing.T) {
	assert.True(t, IsBrokenPipe(syscall.EPIPE))
	assert.True(t, IsBrokenPipe(fmt.Errorf("write: %w", io.ErrClosedPipe)))
	assert.False(t, IsBrokenPipe(io.EOF))
	assert.False(t, IsBrokenPipe(nil))
}
