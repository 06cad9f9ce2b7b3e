package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/spark-tracker/internal/models"
	"github.com/AngelCh415/spark-tracker/internal/settings"
)

func metaServer(t *testing.T) *httptest.Server {
	t.Helper()
	long := strings.Repeat("ñ", 100)
	mux := http.NewServeMux()
	mux.HandleFunc("/ig1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.URL.Query().Get("access_token"))
		w.Write([]byte(`{"username":"spark.ig","followers_count":3100,"media_count":87}`))
	})
	mux.HandleFunc("/ig1/media", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"data":[
			{"id":"a","caption":"` + long + `","timestamp":"2025-07-03T10:00:00+0000","like_count":12,"comments_count":2,"media_type":"VIDEO","thumbnail_url":"http://t/a"},
			{"id":"b","timestamp":"2025-07-04T10:00:00+0000","media_type":"IMAGE"}
		]}`))
	})
	mux.HandleFunc("/pg1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Spark Page","fan_count":640}`))
	})
	mux.HandleFunc("/pg1/posts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"id":"p1","message":"New program launch","created_time":"2025-07-05T08:00:00+0000","shares":{"count":9}},
			{"id":"p2","created_time":"2025-07-06T08:00:00+0000"}
		]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

var metaSettings = settings.Settings{MetaAccessToken: "tok", InstagramAccountID: "ig1", FacebookPageID: "pg1"}

func TestInstagramProfileAndMedia(t *testing.T) {
	m := NewMeta(NewHTTPClient(time.Second), metaServer(t).URL)
	ctx := context.Background()

	p, err := m.InstagramProfile(ctx, metaSettings)
	require.NoError(t, err)
	assert.Equal(t, models.PlatformStats{Platform: models.PlatformInstagram, Name: "spark.ig", Followers: 3100, ContentCount: 87}, p)

	media, err := m.InstagramMedia(ctx, metaSettings, 0)
	require.NoError(t, err)
	require.Len(t, media, 2)
	assert.Equal(t, models.ContentReel, media[0].ContentType)
	assert.Equal(t, 80, len([]rune(media[0].Title)))
	assert.Equal(t, "2025-07-03", media[0].PublishDate)
	assert.Equal(t, int64(12), media[0].Likes)
	assert.Equal(t, models.ContentPost, media[1].ContentType)
	assert.Equal(t, "Untitled", media[1].Title)
}

func TestFacebookPageAndPosts(t *testing.T) {
	m := NewMeta(NewHTTPClient(time.Second), metaServer(t).URL)
	ctx := context.Background()

	page, err := m.FacebookPage(ctx, metaSettings)
	require.NoError(t, err)
	assert.Equal(t, "Spark Page", page.Name)
	assert.Equal(t, int64(640), page.Followers)

	posts, err := m.FacebookPosts(ctx, metaSettings, 5)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, int64(9), posts[0].Shares)
	assert.Equal(t, "Untitled Post", posts[1].Title)
	assert.Equal(t, "2025-07-06", posts[1].PublishDate)
}

func TestMetaNeedsCredentials(t *testing.T) {
	m := NewMeta(NewHTTPClient(time.Second), "http://127.0.0.1:1")
	ctx := context.Background()

	_, err := m.InstagramProfile(ctx, settings.Settings{MetaAccessToken: "tok"})
	assert.ErrorIs(t, err, ErrMissingCredential)
	_, err = m.FacebookPosts(ctx, settings.Settings{FacebookPageID: "pg1"}, 5)
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestTitleCutsRunes(t *testing.T) {
	assert.Equal(t, "short", title("short", "x"))
	assert.Equal(t, "x", title("", "x"))
	assert.Len(t, []rune(title(strings.Repeat("é", 81), "x")), 80)
	assert.Equal(t, "ig%201/media", escapePath("ig 1/media"))
}
