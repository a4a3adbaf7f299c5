package fs

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
)

// EncodingUTF8 is the only encoding resources are decoded as.
const EncodingUTF8 = "utf8"

// TextFileResource is the result of a successful read.
type TextFileResource struct {
	URL      *url.URL `json:"-"`
	Content  string   `json:"content"`
	Encoding string   `json:"encoding"`
	Stats    Stats    `json:"stats"`
}

// Basename returns the last segment of the resource URL.
func (r TextFileResource) Basename() string {
	if r.URL == nil {
		return ""
	}
	return URLBasename(r.URL)
}

var gzipMagic = []byte{0x1f, 0x8b}

// decodeText turns raw bytes into text. Gzipped content is inflated first,
// and a UTF-8 byte order mark is dropped.
func decodeText(u *url.URL, data []byte) (string, error) {
	if strings.HasSuffix(urlPath(u), ".gz") || bytes.HasPrefix(data, gzipMagic) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("gunzip: %w", err)
		}
		defer func() { _ = zr.Close() }()
		data, err = io.ReadAll(zr)
		if err != nil {
			return "", fmt.Errorf("gunzip: %w", err)
		}
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), "�"), nil
	}
	return string(data), nil
}

func newResource(u *url.URL, data []byte, st Stats) (TextFileResource, error) {
	text, err := decodeText(u, data)
	if err != nil {
		return TextFileResource{}, err
	}
	return TextFileResource{
		URL:      u,
		Content:  text,
		Encoding: EncodingUTF8,
		Stats:    st,
	}, nil
}
