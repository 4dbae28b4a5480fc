package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

// ErrNoStream means the channel page loaded but carried no playlist URL.
var ErrNoStream = errors.New("no stream url in channel page")

var m3u8Pattern = regexp.MustCompile(`https?://[^\s"'<>]+\.m3u8[^\s"'<>]*`)

const (
	// DefaultChannelTimeout bounds the live fetch of a channel page.
	DefaultChannelTimeout = 10 * time.Second

	channelUserAgent = "netfliz-portal/1.0"

	maxChannelPageBytes = 4 << 20
)

// ExtractM3U8 returns the first HLS playlist URL found in an HTML page.
func ExtractM3U8(page string) (string, bool) {
	match := m3u8Pattern.FindString(page)
	return match, match != ""
}

// ChannelResolver pulls live playlist URLs out of TV channel pages. Channel
// operators rotate the playlist URL constantly, so the page is fetched at
// watch time instead of being stored.
type ChannelResolver struct {
	client *http.Client
}

// NewChannelResolver builds a resolver with the given timeout; zero means
// DefaultChannelTimeout.
func NewChannelResolver(timeout time.Duration) *ChannelResolver {
	if timeout <= 0 {
		timeout = DefaultChannelTimeout
	}
	return &ChannelResolver{client: &http.Client{Timeout: timeout}}
}

// Resolve fetches pageURL and extracts the playlist URL. Network errors,
// timeouts and non-2xx answers come back as ErrUpstream; a page without a
// playlist is ErrNoStream.
func (r *ChannelResolver) Resolve(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build channel request: %w", err)
	}
	req.Header.Set("User-Agent", channelUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: channel page answered %d", ErrUpstream, resp.StatusCode)
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, maxChannelPageBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read channel page: %v", ErrUpstream, err)
	}

	streamURL, ok := ExtractM3U8(string(page))
	if !ok {
		return "", ErrNoStream
	}
	return streamURL, nil
}
