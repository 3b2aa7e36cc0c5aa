package handshake

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luciancaetano/lobby"
)

// TestEncode tests the Encode function with various inputs
func TestEncode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr error
	}{
		{
			name:  "ascii name",
			input: "alice",
			want:  []byte("alice\x00"),
		},
		{
			name:  "empty name",
			input: "",
			want:  []byte{0x00},
		},
		{
			name:  "multibyte name",
			input: "žofia",
			want:  append([]byte("žofia"), 0x00),
		},
		{
			name:    "embedded delimiter",
			input:   "al\x00ice",
			wantErr: lobby.ErrNameHasNUL,
		},
		{
			name:    "invalid utf-8",
			input:   string([]byte{0xff, 0xfe}),
			wantErr: lobby.ErrInvalidName,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Encode(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestReadName tests decoding the handshake header from a stream
func TestReadName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    []byte
		maxLen   int
		bufSize  int
		want     string
		wantRest string
		wantErr  error
	}{
		{
			name:     "name followed by data",
			input:    []byte("alice\x00hello"),
			want:     "alice",
			wantRest: "hello",
		},
		{
			name:  "empty name",
			input: []byte{0x00},
			want:  "",
		},
		{
			name:     "name longer than buffer",
			input:    append(bytes.Repeat([]byte("a"), 100), append([]byte{0x00}, "x"...)...),
			bufSize:  16,
			want:     strings.Repeat("a", 100),
			wantRest: "x",
		},
		{
			name:    "stream ends before delimiter",
			input:   []byte("alice"),
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "empty stream",
			input:   nil,
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "invalid utf-8",
			input:   []byte{0xc3, 0x28, 0x00},
			wantErr: lobby.ErrInvalidName,
		},
		{
			name:    "name at limit",
			input:   []byte("abcd\x00"),
			maxLen:  4,
			want:    "abcd",
			wantErr: nil,
		},
		{
			name:    "name over limit",
			input:   []byte("abcde\x00"),
			maxLen:  4,
			wantErr: lobby.ErrNameTooLong,
		},
		{
			name:    "name over limit without delimiter in buffer",
			input:   bytes.Repeat([]byte("a"), 64),
			maxLen:  20,
			bufSize: 16,
			wantErr: lobby.ErrNameTooLong,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			size := tt.bufSize
			if size == 0 {
				size = 4096
			}
			r := bufio.NewReaderSize(bytes.NewReader(tt.input), size)

			got, err := ReadName(r, tt.maxLen)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			rest, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRest, string(rest))
		})
	}
}

// TestReadNameOneByteReader tests that the header may arrive split across reads
func TestReadNameOneByteReader(t *testing.T) {
	t.Parallel()

	r := bufio.NewReader(iotest.OneByteReader(strings.NewReader("bob\x00rest")))

	got, err := ReadName(r, 0)
	require.NoError(t, err)
	assert.Equal(t, "bob", got)
}

// TestReadNameIOError tests that a read failure is reported as-is
func TestReadNameIOError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := bufio.NewReader(io.MultiReader(strings.NewReader("ali"), iotest.ErrReader(boom)))

	_, err := ReadName(r, 0)
	assert.ErrorIs(t, err, boom)
}

// TestWriteNameRoundTrip tests that a written header reads back
func TestWriteNameRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteName(&buf, "carol"))
	buf.WriteString("payload")

	r := bufio.NewReader(&buf)
	got, err := ReadName(r, 0)
	require.NoError(t, err)
	assert.Equal(t, "carol", got)
}

// TestWriteNameRejectsDelimiter tests that nothing is written for an invalid name
func TestWriteNameRejectsDelimiter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := WriteName(&buf, "a\x00b")
	assert.ErrorIs(t, err, lobby.ErrNameHasNUL)
	assert.Zero(t, buf.Len())
}
