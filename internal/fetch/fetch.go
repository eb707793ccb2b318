// Package fetch opens the sources that wordcount reads from;
// handles standard input, local files and HTTP(S) URLs, decompressing gzip, zstd and xz
// content on the way.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/xi2/xz"
)

// Size limits to prevent memory overload
const (
	MaxFileSizeBytes = 50 * 1024 * 1024  // 50MB limit for files and stdin
	MaxHTTPSizeBytes = 100 * 1024 * 1024 // 100MB limit for HTTP content (may not have Content-Length)

	// MaxDecodedSizeBytes caps the output of a decompressor
	MaxDecodedSizeBytes = 200 * 1024 * 1024
)

// HTTPRequestTimeout bounds a whole HTTP fetch.
const HTTPRequestTimeout = 30 * time.Second

var (
	HTTPDialTimeout           = HTTPRequestTimeout / 6
	HTTPTLSTimeout            = HTTPRequestTimeout / 6
	HTTPResponseHeaderTimeout = HTTPRequestTimeout / 2
)

// Source is an opened input ready to be counted.
type Source struct {
	io.ReadCloser
	Name string // "stdin", a file path or a URL
	HTML bool   // content should go through HTML text extraction
}

// limitedReadCloser wraps an io.ReadCloser to enforce size limits
type limitedReadCloser struct {
	io.ReadCloser
	N      int64  // max bytes remaining
	source string // for error messages
}

func (l *limitedReadCloser) Read(p []byte) (n int, err error) {
	if l.N <= 0 {
		// the limit is only exceeded if there is more to read
		var probe [1]byte
		n, err = l.ReadCloser.Read(probe[:])
		if n > 0 {
			return 0, fmt.Errorf("content from %q exceeds size limit", l.source)
		}
		return 0, err
	}
	if int64(len(p)) > l.N {
		p = p[0:l.N]
	}
	n, err = l.ReadCloser.Read(p)
	l.N -= int64(n)
	return
}

// multiCloser closes a decoder and the stream underneath it.
type multiCloser struct {
	io.Reader
	closers []func() error
}

func (m *multiCloser) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// httpClient is a shared HTTP client with timeouts to prevent indefinite hangs.
var httpClient = &http.Client{
	Timeout: HTTPRequestTimeout,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: HTTPDialTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   HTTPTLSTimeout,
		ResponseHeaderTimeout: HTTPResponseHeaderTimeout,
		DisableKeepAlives:     true,
	},
}

// Open resolves a source string and returns its (decompressed) content.
// It supports three types of sources:
//   - "-" reads from standard input
//   - URLs starting with "http://" or "https://" are fetched via HTTP
//   - everything else is treated as a local file path
//
// Names ending in .gz, .zst or .xz are decompressed transparently.
func Open(ctx context.Context, source string) (*Source, error) {
	switch {
	case source == "-":
		return &Source{
			ReadCloser: &limitedReadCloser{ReadCloser: os.Stdin, N: MaxFileSizeBytes, source: "stdin"},
			Name:       "stdin",
		}, nil
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		return openURL(ctx, source)
	default:
		return openFile(source)
	}
}

// openURL retrieves content from an HTTP or HTTPS URL
func openURL(ctx context.Context, rawURL string) (*Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for URL %q: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", "wordcount/0.1")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %q: %w", rawURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP request failed for URL %q: status %s", rawURL, resp.Status)
	}

	// reject oversized bodies up front when the server tells us the size
	if contentLength := resp.Header.Get("Content-Length"); contentLength != "" {
		if size, err := strconv.ParseInt(contentLength, 10, 64); err == nil && size > MaxHTTPSizeBytes {
			resp.Body.Close()
			return nil, fmt.Errorf("HTTP content too large (%d bytes > %d bytes limit)", size, MaxHTTPSizeBytes)
		}
	}

	body := &limitedReadCloser{ReadCloser: resp.Body, N: MaxHTTPSizeBytes, source: rawURL}

	name := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		name = u.Path
	}
	rc, inner, err := decompress(body, name, rawURL)
	if err != nil {
		body.Close()
		return nil, err
	}

	return &Source{
		ReadCloser: rc,
		Name:       rawURL,
		HTML:       isHTMLContentType(resp.Header.Get("Content-Type")) || isHTMLName(inner),
	}, nil
}

// openFile opens a local file for reading with better error messages
func openFile(filePath string) (*Source, error) {
	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file %q does not exist", filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access file %q: %w", filePath, err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%q is a directory", filePath)
	}

	// check file size before opening to prevent memory overload
	if fileInfo.Size() > MaxFileSizeBytes {
		return nil, fmt.Errorf("file %q is too large (%d bytes > %d bytes limit)",
			filePath, fileInfo.Size(), MaxFileSizeBytes)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}

	rc, inner, err := decompress(file, filePath, filePath)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &Source{ReadCloser: rc, Name: filePath, HTML: isHTMLName(inner)}, nil
}

// decompress picks a decoder from the extension of name and returns the decoded stream
// together with name stripped of the compression extension.
func decompress(rc io.ReadCloser, name, source string) (io.ReadCloser, string, error) {
	ext := strings.ToLower(path.Ext(name))
	inner := strings.TrimSuffix(name, path.Ext(name))

	var decoded io.ReadCloser
	switch ext {
	case ".gz":
		zr, err := gzip.NewReader(rc)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open gzip stream %q: %w", source, err)
		}
		decoded = &multiCloser{Reader: zr, closers: []func() error{zr.Close, rc.Close}}
	case ".zst":
		zr, err := zstd.NewReader(rc)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open zstd stream %q: %w", source, err)
		}
		decoded = &multiCloser{Reader: zr, closers: []func() error{func() error { zr.Close(); return nil }, rc.Close}}
	case ".xz":
		xr, err := xz.NewReader(rc, 0)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open xz stream %q: %w", source, err)
		}
		decoded = &multiCloser{Reader: xr, closers: []func() error{rc.Close}}
	default:
		return rc, name, nil
	}

	return &limitedReadCloser{ReadCloser: decoded, N: MaxDecodedSizeBytes, source: source}, inner, nil
}

func isHTMLName(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return true
	default:
		return false
	}
}

func isHTMLContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
