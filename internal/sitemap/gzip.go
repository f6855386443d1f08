package sitemap

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"
)

// IsGzipped reports whether a payload should be treated as gzip-compressed,
// judged by the URL extension or the response content type. The payload
// itself is not inspected at this point.
func IsGzipped(url, contentType string) bool {
	if strings.HasSuffix(strings.ToLower(url), ".gz") {
		return true
	}
	return strings.Contains(strings.ToLower(contentType), "gzip")
}

// DecompressGzip inflates a gzip payload. Input that does not start with the
// gzip magic bytes is returned unchanged, so plain payloads pass through even
// when headers suggested compression.
func DecompressGzip(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}

	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("initialising gzip reader: %w", err)
	}
	defer reader.Close()

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("decompressing payload: %w", err)
	}

	return decompressed, nil
}
