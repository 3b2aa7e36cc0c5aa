package handshake

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/luciancaetano/lobby"
)

// Delimiter terminates the name a client sends when it connects.
const Delimiter byte = 0x00

// Encode returns the handshake header for name: its UTF-8 bytes followed by the delimiter.
func Encode(name string) ([]byte, error) {
	if !utf8.ValidString(name) {
		return nil, lobby.ErrInvalidName
	}
	if strings.IndexByte(name, Delimiter) >= 0 {
		return nil, lobby.ErrNameHasNUL
	}

	out := make([]byte, len(name)+1)
	copy(out, name)
	out[len(name)] = Delimiter
	return out, nil
}

// WriteName sends the handshake header for name to w.
func WriteName(w io.Writer, name string) error {
	data, err := Encode(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadName reads the handshake header from r and returns the name with the
// delimiter stripped. Bytes after the delimiter stay buffered in r.
//
// maxLen limits the name length in bytes; zero or less means no limit.
// A stream that ends before the delimiter yields io.ErrUnexpectedEOF.
func ReadName(r *bufio.Reader, maxLen int) (string, error) {
	var name []byte
	for {
		chunk, err := r.ReadSlice(Delimiter)
		name = append(name, chunk...)

		switch {
		case err == nil:
			name = name[:len(name)-1]
			if maxLen > 0 && len(name) > maxLen {
				return "", lobby.ErrNameTooLong
			}
			if !utf8.Valid(name) {
				return "", lobby.ErrInvalidName
			}
			return string(name), nil
		case errors.Is(err, bufio.ErrBufferFull):
			if maxLen > 0 && len(name) > maxLen {
				return "", lobby.ErrNameTooLong
			}
		case errors.Is(err, io.EOF):
			return "", fmt.Errorf("handshake: %w", io.ErrUnexpectedEOF)
		default:
			return "", fmt.Errorf("handshake: %w", err)
		}
	}
}
