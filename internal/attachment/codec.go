// Package attachment converts uploaded files to and from the data-URI strings
// persisted on quotes and contracts.
package attachment

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// PDFContentType is the content type offered for every download.
const PDFContentType = "application/pdf"

const defaultMIME = "application/octet-stream"

var (
	// ErrMalformed is returned when a stored attachment cannot be decoded.
	ErrMalformed = errors.New("malformed attachment")
	// ErrTooLarge is returned when an upload exceeds the configured limit.
	ErrTooLarge = errors.New("attachment too large")
)

// Blob is a decoded attachment ready to be served.
type Blob struct {
	Data        []byte
	ContentType string
	FileName    string
}

// Encode produces "data:<mime>;base64,<payload>".
func Encode(mime string, data []byte) string {
	if mime == "" {
		mime = defaultMIME
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// EncodeReader buffers r completely and encodes it. A limit <= 0 disables the
// size check.
func EncodeReader(mime string, r io.Reader, limit int64) (string, error) {
	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return Encode(mime, data), nil
}

// Decode returns the raw bytes of a stored attachment. Everything up to the
// first comma is discarded.
func Decode(stored string) ([]byte, error) {
	_, payload, ok := strings.Cut(stored, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing data prefix separator", ErrMalformed)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return data, nil
}

// Download decodes a stored attachment into a PDF blob named fileName, or
// fallback when fileName is empty.
func Download(stored, fileName, fallback string) (Blob, error) {
	data, err := Decode(stored)
	if err != nil {
		return Blob{}, err
	}
	if strings.TrimSpace(fileName) == "" {
		fileName = fallback
	}
	return Blob{Data: data, ContentType: PDFContentType, FileName: fileName}, nil
}
