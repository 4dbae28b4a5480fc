package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractDriveID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		url    string
		wantID string
		wantOK bool
	}{
		{
			name:   "file path form",
			url:    "https://drive.google.com/file/d/ABC123/view?usp=sharing",
			wantID: "ABC123",
			wantOK: true,
		},
		{
			name:   "query id form",
			url:    "https://drive.google.com/uc?export=download&id=xYz_-9",
			wantID: "xYz_-9",
			wantOK: true,
		},
		{
			name:   "open form",
			url:    "https://drive.google.com/open?id=QQ77",
			wantID: "QQ77",
			wantOK: true,
		},
		{
			name: "plain cdn url",
			url:  "https://cdn.example.com/movie.mp4",
		},
		{
			name: "empty",
			url:  "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			id, ok := ExtractDriveID(tc.url)
			require.Equal(t, tc.wantOK, ok)
			require.Equal(t, tc.wantID, id)
		})
	}
}

func TestRewritePlaybackSource(t *testing.T) {
	t.Parallel()

	rewritten := RewritePlaybackSource("https://drive.google.com/file/d/ABC123/view")
	require.Equal(t, "/stream/drive?id=ABC123", rewritten)

	// The id patterns decide, not the host.
	mirrored := RewritePlaybackSource("https://mirror.example.com/download?id=XYZ789")
	require.Equal(t, "/stream/drive?id=XYZ789", mirrored)

	// URLs with no recognizable id pass through byte for byte.
	plain := "https://cdn.example.com/movie.mp4#t=10"
	require.Equal(t, plain, RewritePlaybackSource(plain))
}

func TestDriveOpenDirectFile(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "ABC123", r.URL.Query().Get("id"))
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("mp4-bytes"))
	}))
	defer upstream.Close()

	resolver := NewDriveResolver(upstream.Client())
	resolver.endpoint = upstream.URL + "/uc?export=download"

	stream, err := resolver.Open(context.Background(), "ABC123")
	require.NoError(t, err)
	defer stream.Body.Close()

	require.Equal(t, "video/mp4", stream.ContentType)
	body, err := io.ReadAll(stream.Body)
	require.NoError(t, err)
	require.Equal(t, "mp4-bytes", string(body))
}

func TestDriveOpenCookieConfirmFlow(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("confirm") == "tok42" {
			w.Header().Set("Content-Type", "video/mp4")
			_, _ = w.Write([]byte("the-real-file"))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "download_warning_13058876669334088843", Value: "tok42"})
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>virus scan warning</html>"))
	}))
	defer upstream.Close()

	resolver := NewDriveResolver(upstream.Client())
	resolver.endpoint = upstream.URL + "/uc?export=download"

	stream, err := resolver.Open(context.Background(), "big-file")
	require.NoError(t, err)
	defer stream.Body.Close()

	body, err := io.ReadAll(stream.Body)
	require.NoError(t, err)
	require.Equal(t, "the-real-file", string(body))
}

func TestDriveOpenBodyConfirmFlow(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("confirm") == "bodytok" {
			_, _ = w.Write([]byte("streamed-after-confirm"))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<a href="/uc?export=download&confirm=bodytok&id=x">Download anyway</a>`))
	}))
	defer upstream.Close()

	resolver := NewDriveResolver(upstream.Client())
	resolver.endpoint = upstream.URL + "/uc?export=download"

	stream, err := resolver.Open(context.Background(), "big-file")
	require.NoError(t, err)
	defer stream.Body.Close()

	body, err := io.ReadAll(stream.Body)
	require.NoError(t, err)
	require.Equal(t, "streamed-after-confirm", string(body))
}

func TestDriveOpenHTMLWithoutTokenStreamsAsIs(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>just a page</html>"))
	}))
	defer upstream.Close()

	resolver := NewDriveResolver(upstream.Client())
	resolver.endpoint = upstream.URL + "/uc?export=download"

	stream, err := resolver.Open(context.Background(), "page")
	require.NoError(t, err)
	defer stream.Body.Close()

	body, err := io.ReadAll(stream.Body)
	require.NoError(t, err)
	require.Equal(t, "<html>just a page</html>", string(body))
}

func TestDriveOpenUpstreamRejection(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer upstream.Close()

	resolver := NewDriveResolver(upstream.Client())
	resolver.endpoint = upstream.URL + "/uc?export=download"

	_, err := resolver.Open(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDriveOpenEmptyID(t *testing.T) {
	t.Parallel()

	resolver := NewDriveResolver(nil)
	_, err := resolver.Open(context.Background(), "")
	require.ErrorIs(t, err, ErrNotFound)
}
