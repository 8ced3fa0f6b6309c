package content

import (
	"bytes"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// Kind is the resolved display variant of session content
type Kind int

const (
	KindText Kind = iota
	KindPDF
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPDF:
		return "pdf"
	default:
		return "unsupported"
	}
}

// MarshalText renders the kind by name in JSON
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

const (
	mimePDF  = "application/pdf"
	mimeHTML = "text/html"
)

// Content is a resolved content reference, ready to render
type Content struct {
	Kind      Kind   `json:"kind"`
	MIME      string `json:"mime"`
	Text      string `json:"text,omitempty"`
	Reference string `json:"reference"`
}

// Resolve classifies a blob once after it is fetched, by its declared
// media type alone. It reports false when no type was declared.
func Resolve(ref string, blob Blob) (Content, bool) {
	mediaType, params := parseMediaType(blob.ContentType)
	switch {
	case mediaType == "":
		return Content{}, false
	case strings.HasPrefix(mediaType, "text/"):
		text := DecodeText(blob.Data, params["charset"])
		return Content{Kind: KindText, MIME: mediaType, Text: text, Reference: ref}, true
	case mediaType == mimePDF:
		return Content{Kind: KindPDF, MIME: mediaType, Reference: ref}, true
	default:
		return Content{Kind: KindUnsupported, MIME: mediaType, Reference: ref}, true
	}
}

// Readable renders a textual blob for reading: HTML is reduced to its
// visible text, other text is decoded as is. Non-text blobs report false.
func Readable(blob Blob) (string, bool) {
	mediaType, params := parseMediaType(blob.ContentType)
	if !strings.HasPrefix(mediaType, "text/") {
		return "", false
	}
	text := DecodeText(blob.Data, params["charset"])
	if mediaType == mimeHTML {
		text = HTMLText(text)
	}
	return text, true
}

// parseMediaType lowercases the media type of a Content-Type header.
// A malformed parameter list still yields the bare type.
func parseMediaType(header string) (string, map[string]string) {
	mediaType, params, err := mime.ParseMediaType(header)
	if err != nil {
		bare, _, _ := strings.Cut(header, ";")
		return strings.ToLower(strings.TrimSpace(bare)), nil
	}
	return strings.ToLower(mediaType), params
}

// DecodeText converts textual bytes to UTF-8 using the declared charset,
// falling back to detection when undeclared bytes are not valid UTF-8.
func DecodeText(data []byte, label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		if utf8.Valid(data) {
			return string(data)
		}
		label = detectCharset(data)
	}
	if label == "utf-8" || label == "utf8" {
		return string(data)
	}

	reader, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		return string(data)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

func detectCharset(data []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}
