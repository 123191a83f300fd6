// Package fetch retrieves source documents for scrambling. It owns the
// network concerns the rewriting core deliberately excludes: transport,
// timeouts, decompression, charset detection, and body size bounding.
package fetch

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// DefaultTimeout bounds a whole fetch including body read.
const DefaultTimeout = 30 * time.Second

// DefaultMaxBodyBytes bounds how much of a page is read. Pathologically
// large pages are the fetcher's problem, not the rewriting core's.
const DefaultMaxBodyBytes = 16 << 20 // 16 MiB

// ErrUnsupportedContentType reports a document the scrambler has no
// policy for. This is a normal outcome, not a failure: the caller decides
// whether to redirect to the original or block access.
var ErrUnsupportedContentType = errors.New("no scrambling policy for this content type")

// StatusError reports a non-2xx response from the origin server.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return "upstream returned " + e.Status
}

// Kind classifies how a fetched document should be scrambled.
type Kind int

const (
	// KindHTML documents go through the full markup-aware pipeline.
	KindHTML Kind = iota

	// KindText documents are scrambled as one plain text run.
	KindText
)

// Page is a fetched document, decompressed and decoded to UTF-8.
type Page struct {
	// URL is the final URL after any redirects.
	URL string

	// MIMEType is the media type without parameters, e.g. "text/html".
	MIMEType string

	// Charset is the declared source encoding label, defaulted to utf-8.
	Charset string

	// Kind selects the scrambling pipeline for this document.
	Kind Kind

	// Content is the document text, decoded from Charset.
	Content string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout overrides the fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.client.Timeout = d }
}

// WithMaxBodyBytes overrides the body size limit.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBody = n }
}

// WithClient substitutes the HTTP client, e.g. for tests.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// Fetcher retrieves pages over HTTP(S). Safe for concurrent use.
type Fetcher struct {
	client  *http.Client
	maxBody int64
}

// New creates a Fetcher with default limits.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{Timeout: DefaultTimeout},
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves and decodes the document at url.
//
// Returns ErrUnsupportedContentType (wrapped) for media types with no
// scrambling policy, and *StatusError for non-2xx upstream responses.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/html, application/xhtml+xml, text/*;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	mimeType, label := contentTypeOf(resp.Header.Get("Content-Type"))
	kind, err := kindOf(mimeType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mimeType, err)
	}

	body := io.LimitReader(resp.Body, f.maxBody)
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("open gzip body: %w", err)
		}
		defer gz.Close()
		// The limit must hold for the decompressed stream as well, or a
		// tiny compressed body could expand without bound.
		body = io.LimitReader(gz, f.maxBody)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	content, err := decode(raw, label)
	if err != nil {
		return nil, fmt.Errorf("decode %s body: %w", label, err)
	}

	return &Page{
		URL:      resp.Request.URL.String(),
		MIMEType: mimeType,
		Charset:  label,
		Kind:     kind,
		Content:  content,
	}, nil
}

// contentTypeOf splits a Content-Type header into media type and charset
// label, defaulting to text/html and utf-8.
func contentTypeOf(header string) (mimeType, label string) {
	mimeType, label = "text/html", "utf-8"
	if header == "" {
		return mimeType, label
	}

	parsed, params, err := mime.ParseMediaType(header)
	if err != nil {
		// Fall back to the bare type before any parameters.
		if t := strings.TrimSpace(strings.Split(header, ";")[0]); t != "" {
			mimeType = strings.ToLower(t)
		}
		return mimeType, label
	}

	mimeType = parsed
	if cs, ok := params["charset"]; ok && cs != "" {
		label = strings.ToLower(cs)
	}
	return mimeType, label
}

// kindOf maps a media type to a scrambling pipeline.
func kindOf(mimeType string) (Kind, error) {
	switch {
	case mimeType == "text/html" || mimeType == "application/xhtml+xml":
		return KindHTML, nil
	case strings.HasPrefix(mimeType, "text/"):
		return KindText, nil
	default:
		return 0, ErrUnsupportedContentType
	}
}

// decode converts raw bytes to UTF-8 using the charset label from the
// response headers. Unknown labels fall back to interpreting the bytes
// as UTF-8, which is a better degradation than refusing the page.
func decode(raw []byte, label string) (string, error) {
	enc, _ := charset.Lookup(label)
	if enc == nil || enc == encoding.Nop {
		return string(raw), nil
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
