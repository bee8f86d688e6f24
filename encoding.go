package serialport

import (
	"fmt"
	"time"

	"golang.org/x/text/encoding"
)

// EncodeText converts s to bytes using the given character encoding and
// optionally appends a zero terminator. A nil encoding passes the string
// through as UTF-8.
func EncodeText(s string, enc encoding.Encoding, zeroTerminated bool) ([]byte, error) {
	var data []byte
	if enc == nil {
		data = []byte(s)
	} else {
		encoded, err := enc.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("failed to encode string: %w", err)
		}
		data = encoded
	}
	if zeroTerminated {
		data = append(data, 0)
	}
	return data, nil
}

// WriteString encodes s with the given encoding (nil for UTF-8), optionally
// appends a zero terminator, and transmits the result. Timeout semantics
// match Write.
func (p *Port) WriteString(s string, enc encoding.Encoding, zeroTerminated bool, timeout time.Duration) (bool, error) {
	data, err := EncodeText(s, enc, zeroTerminated)
	if err != nil {
		return false, err
	}
	return p.Write(data, timeout)
}
