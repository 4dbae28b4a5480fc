package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
)

// Errors returned by the service layer.
var (
	ErrNotFound = errors.New("remote file not found")
	ErrUpstream = errors.New("upstream fetch failed")
)

// Drive share links come in several shapes; the first matching pattern wins.
var driveIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([0-9A-Za-z_-]+)`),
	regexp.MustCompile(`id=([0-9A-Za-z_-]+)`),
	regexp.MustCompile(`/open\?id=([0-9A-Za-z_-]+)`),
}

var confirmTokenPattern = regexp.MustCompile(`confirm=([0-9A-Za-z_-]+)`)

const (
	driveDownloadEndpoint = "https://docs.google.com/uc?export=download"
	confirmCookiePrefix   = "download_warning"

	// Interstitial pages are small; anything bigger is the file itself.
	maxInterstitialBytes = 2 << 20
)

// ExtractDriveID pulls the file identifier out of a Drive share link. It
// reports false for URLs that are not Drive links at all.
func ExtractDriveID(rawURL string) (string, bool) {
	for _, pattern := range driveIDPatterns {
		if match := pattern.FindStringSubmatch(rawURL); match != nil {
			return match[1], true
		}
	}
	return "", false
}

// RewritePlaybackSource swaps a share link for the local streaming proxy
// route. Any URL matching a Drive ID pattern is rewritten, host regardless;
// URLs with no recognizable ID pass through as already direct.
func RewritePlaybackSource(sourceURL string) string {
	id, ok := ExtractDriveID(sourceURL)
	if !ok {
		return sourceURL
	}
	return "/stream/drive?id=" + url.QueryEscape(id)
}

// resolveState tracks the confirm-token handshake.
type resolveState int

const (
	stateInitial resolveState = iota
	stateAwaitingConfirm
	stateResolved
	stateFailed
)

// DriveStream is a resolved remote file ready to relay to the client.
type DriveStream struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// DriveResolver fetches files behind Drive's indirect download flow. Large
// files answer the first request with an HTML interstitial carrying a
// confirmation token; the resolver replays the request with that token and
// streams the real payload.
type DriveResolver struct {
	client   *http.Client
	endpoint string
}

// NewDriveResolver builds a resolver on the given client; a nil client gets
// http.DefaultClient semantics with its own cookie handling per call.
func NewDriveResolver(client *http.Client) *DriveResolver {
	if client == nil {
		client = &http.Client{}
	}
	return &DriveResolver{client: client, endpoint: driveDownloadEndpoint}
}

// Open resolves fileID and returns the byte stream. The caller owns Body.
func (r *DriveResolver) Open(ctx context.Context, fileID string) (*DriveStream, error) {
	if fileID == "" {
		return nil, ErrNotFound
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	client := &http.Client{
		Transport:     r.client.Transport,
		Timeout:       r.client.Timeout,
		CheckRedirect: r.client.CheckRedirect,
		Jar:           jar,
	}

	state := stateInitial
	downloadURL := r.endpoint + "&id=" + url.QueryEscape(fileID)

	var stream *DriveStream
	var resolveErr error

	for state != stateResolved && state != stateFailed {
		switch state {
		case stateInitial:
			resp, err := fetch(ctx, client, downloadURL)
			if err != nil {
				state, resolveErr = stateFailed, err
				break
			}

			token, buffered, err := confirmToken(resp)
			if err != nil {
				resp.Body.Close()
				state, resolveErr = stateFailed, err
				break
			}
			if token == "" {
				// No interstitial: this response is the file.
				state, stream = stateResolved, streamOf(resp, buffered)
				break
			}

			resp.Body.Close()
			downloadURL += "&confirm=" + url.QueryEscape(token)
			state = stateAwaitingConfirm

		case stateAwaitingConfirm:
			resp, err := fetch(ctx, client, downloadURL)
			if err != nil {
				state, resolveErr = stateFailed, err
				break
			}
			state, stream = stateResolved, streamOf(resp, nil)
		}
	}

	if state == stateFailed {
		return nil, resolveErr
	}
	return stream, nil
}

func fetch(ctx context.Context, client *http.Client, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build drive request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: drive answered %d", ErrNotFound, resp.StatusCode)
	}
	return resp, nil
}

// confirmToken finds the confirmation token on an interstitial response.
// Cookies are checked first, then the page body. When the body had to be
// read, the consumed bytes come back so the caller can still stream them.
func confirmToken(resp *http.Response) (string, []byte, error) {
	for _, cookie := range resp.Cookies() {
		if strings.HasPrefix(cookie.Name, confirmCookiePrefix) {
			return cookie.Value, nil, nil
		}
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return "", nil, nil
	}

	buffered, err := io.ReadAll(io.LimitReader(resp.Body, maxInterstitialBytes))
	if err != nil {
		return "", nil, fmt.Errorf("%w: read interstitial: %v", ErrUpstream, err)
	}
	if match := confirmTokenPattern.FindSubmatch(buffered); match != nil {
		return string(match[1]), buffered, nil
	}
	return "", buffered, nil
}

func streamOf(resp *http.Response, buffered []byte) *DriveStream {
	body := resp.Body
	if buffered != nil {
		body = replayedBody{
			Reader: io.MultiReader(bytes.NewReader(buffered), resp.Body),
			closer: resp.Body,
		}
	}
	return &DriveStream{
		Body:          body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}
}

type replayedBody struct {
	io.Reader
	closer io.Closer
}

func (b replayedBody) Close() error { return b.closer.Close() }
