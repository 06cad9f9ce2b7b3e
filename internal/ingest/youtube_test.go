package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/spark-tracker/internal/models"
	"github.com/AngelCh415/spark-tracker/internal/settings"
)

func TestParseDuration(t *testing.T) {
	cases := map[string]int64{
		"PT59S":    59,
		"PT1M":     60,
		"PT1M1S":   61,
		"PT1H2M3S": 3723,
		"PT2H":     7200,
		"P1D":      0,
		"":         0,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseDuration(in), in)
	}
}

func youtubeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/channels", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k-1", r.URL.Query().Get("key"))
		assert.Equal(t, "UC1", r.URL.Query().Get("id"))
		w.Write([]byte(`{"items":[{"id":"UC1","snippet":{"title":"Spark","thumbnails":{"default":{"url":"http://img/c.jpg"}}},
			"statistics":{"subscriberCount":"1200","viewCount":"98000","videoCount":"42"}}]}`))
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "UC1", r.URL.Query().Get("channelId"))
		assert.Equal(t, "date", r.URL.Query().Get("order"))
		w.Write([]byte(`{"items":[{"id":{"videoId":"v1"}},{"id":{"videoId":"v2"}}]}`))
	})
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "v1,v2", r.URL.Query().Get("id"))
		w.Write([]byte(`{"items":[
			{"id":"v1","snippet":{"title":"Long form","publishedAt":"2025-07-01T15:00:00Z","thumbnails":{"medium":{"url":"http://img/1.jpg"}}},
			 "statistics":{"viewCount":"500","likeCount":"40","commentCount":"3"},"contentDetails":{"duration":"PT12M30S"}},
			{"id":"v2","snippet":{"title":"Quick tip","publishedAt":"2025-07-02T09:00:00Z"},
			 "statistics":{"viewCount":"900"},"contentDetails":{"duration":"PT45S"}}
		]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestYouTubeChannelStats(t *testing.T) {
	yt := NewYouTube(NewHTTPClient(time.Second), youtubeServer(t).URL)
	got, err := yt.ChannelStats(context.Background(), settings.Settings{YouTubeAPIKey: "k-1", YouTubeChannelID: "UC1"})
	require.NoError(t, err)
	assert.Equal(t, models.PlatformStats{
		Platform: models.PlatformYouTube, Name: "Spark", TotalViews: 98000, Followers: 1200,
		ContentCount: 42, ThumbnailURL: "http://img/c.jpg",
	}, got)
}

func TestYouTubeRecentVideos(t *testing.T) {
	yt := NewYouTube(NewHTTPClient(time.Second), youtubeServer(t).URL)
	got, err := yt.RecentVideos(context.Background(), settings.Settings{YouTubeAPIKey: "k-1", YouTubeChannelID: "UC1"}, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, models.ContentVideo, got[0].ContentType)
	assert.Equal(t, "2025-07-01", got[0].PublishDate)
	assert.Equal(t, int64(40), got[0].Likes)
	assert.Equal(t, "http://img/1.jpg", got[0].ThumbnailURL)

	assert.Equal(t, models.ContentShort, got[1].ContentType)
	assert.Equal(t, int64(0), got[1].Likes)
	assert.Equal(t, int64(900), got[1].Views)
}

func TestYouTubeNeedsCredentials(t *testing.T) {
	yt := NewYouTube(NewHTTPClient(time.Second), "http://127.0.0.1:1")
	_, err := yt.ChannelStats(context.Background(), settings.Settings{YouTubeAPIKey: "k"})
	assert.ErrorIs(t, err, ErrMissingCredential)
	_, err = yt.RecentVideos(context.Background(), settings.Settings{YouTubeChannelID: "UC1"}, 5)
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestYouTubeChannelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	_, err := NewYouTube(NewHTTPClient(time.Second), srv.URL).
		ChannelStats(context.Background(), settings.Settings{YouTubeAPIKey: "k", YouTubeChannelID: "nope"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
}
