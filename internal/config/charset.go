package config

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

func lookupCharset(name string) (encoding.Encoding, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding '%s': %w", name, err)
	}
	return enc, nil
}

// DecodeText converts data read from disk in the given charset into UTF-8.
func DecodeText(data []byte, charset string) ([]byte, error) {
	enc, err := lookupCharset(charset)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder().Bytes(data)
}

// EncodeText converts UTF-8 data into the given charset before it is written.
func EncodeText(data []byte, charset string) ([]byte, error) {
	enc, err := lookupCharset(charset)
	if err != nil {
		return nil, err
	}
	return enc.NewEncoder().Bytes(data)
}
