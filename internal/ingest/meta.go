package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/AngelCh415/spark-tracker/internal/models"
	"github.com/AngelCh415/spark-tracker/internal/settings"
)

const DefaultGraphBaseURL = "https://graph.facebook.com/v19.0"

const titleMaxRunes = 80

// Meta lee perfiles y publicaciones de Instagram y Facebook por la Graph API.
type Meta struct {
	c    HTTPClient
	base string
}

func NewMeta(c HTTPClient, baseURL string) *Meta {
	if baseURL == "" {
		baseURL = DefaultGraphBaseURL
	}
	return &Meta{c: c, base: strings.TrimRight(baseURL, "/")}
}

type igProfile struct {
	Username       string `json:"username"`
	FollowersCount int64  `json:"followers_count"`
	MediaCount     int64  `json:"media_count"`
}

type igMedia struct {
	Data []struct {
		ID            string `json:"id"`
		Caption       string `json:"caption"`
		Timestamp     string `json:"timestamp"`
		LikeCount     int64  `json:"like_count"`
		CommentsCount int64  `json:"comments_count"`
		MediaType     string `json:"media_type"`
		ThumbnailURL  string `json:"thumbnail_url"`
	} `json:"data"`
}

type fbPage struct {
	Name           string `json:"name"`
	FollowersCount int64  `json:"followers_count"`
	FanCount       int64  `json:"fan_count"`
}

type fbPosts struct {
	Data []struct {
		ID          string `json:"id"`
		Message     string `json:"message"`
		CreatedTime string `json:"created_time"`
		Shares      *struct {
			Count int64 `json:"count"`
		} `json:"shares"`
	} `json:"data"`
}

func (m *Meta) fetch(ctx context.Context, s settings.Settings, p models.Platform, path string, params url.Values, dst any) error {
	if s.MetaAccessToken == "" {
		return fmt.Errorf("%w: %s", ErrMissingCredential, settings.KeyMetaAccessToken)
	}
	params.Set("access_token", s.MetaAccessToken)
	return GetJSONWithRetry(ctx, m.c, p, m.base+"/"+escapePath(path)+"?"+params.Encode(), dst)
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

func need(v, key string) error {
	if v == "" {
		return fmt.Errorf("%w: %s", ErrMissingCredential, key)
	}
	return nil
}

func clampLimit(n int) string {
	if n <= 0 || n > 100 {
		n = 20
	}
	return strconv.Itoa(n)
}

func (m *Meta) InstagramProfile(ctx context.Context, s settings.Settings) (models.PlatformStats, error) {
	if err := need(s.InstagramAccountID, settings.KeyInstagramAccountID); err != nil {
		return models.PlatformStats{}, err
	}
	var p igProfile
	err := m.fetch(ctx, s, models.PlatformInstagram, s.InstagramAccountID,
		url.Values{"fields": {"username,followers_count,media_count"}}, &p)
	if err != nil {
		return models.PlatformStats{}, err
	}
	return models.PlatformStats{
		Platform:     models.PlatformInstagram,
		Name:         p.Username,
		Followers:    p.FollowersCount,
		ContentCount: p.MediaCount,
	}, nil
}

// InstagramMedia: VIDEO se muestra como reel, todo lo demás como post.
func (m *Meta) InstagramMedia(ctx context.Context, s settings.Settings, limit int) ([]models.ContentItem, error) {
	if err := need(s.InstagramAccountID, settings.KeyInstagramAccountID); err != nil {
		return nil, err
	}
	var resp igMedia
	err := m.fetch(ctx, s, models.PlatformInstagram, s.InstagramAccountID+"/media", url.Values{
		"fields": {"caption,timestamp,like_count,comments_count,media_type,permalink,thumbnail_url"},
		"limit":  {clampLimit(limit)},
	}, &resp)
	if err != nil {
		return nil, err
	}
	out := make([]models.ContentItem, 0, len(resp.Data))
	for _, it := range resp.Data {
		ct := models.ContentPost
		if it.MediaType == "VIDEO" {
			ct = models.ContentReel
		}
		out = append(out, models.ContentItem{
			ID:           it.ID,
			Title:        title(it.Caption, "Untitled"),
			Platform:     models.PlatformInstagram,
			ContentType:  ct,
			PublishDate:  datePart(it.Timestamp),
			Likes:        it.LikeCount,
			Comments:     it.CommentsCount,
			ThumbnailURL: it.ThumbnailURL,
		})
	}
	return out, nil
}

// FacebookPage reports followers; fan_count is used when followers_count is absent.
func (m *Meta) FacebookPage(ctx context.Context, s settings.Settings) (models.PlatformStats, error) {
	if err := need(s.FacebookPageID, settings.KeyFacebookPageID); err != nil {
		return models.PlatformStats{}, err
	}
	var p fbPage
	err := m.fetch(ctx, s, models.PlatformFacebook, s.FacebookPageID,
		url.Values{"fields": {"name,followers_count,fan_count"}}, &p)
	if err != nil {
		return models.PlatformStats{}, err
	}
	followers := p.FollowersCount
	if followers == 0 {
		followers = p.FanCount
	}
	return models.PlatformStats{Platform: models.PlatformFacebook, Name: p.Name, Followers: followers}, nil
}

func (m *Meta) FacebookPosts(ctx context.Context, s settings.Settings, limit int) ([]models.ContentItem, error) {
	if err := need(s.FacebookPageID, settings.KeyFacebookPageID); err != nil {
		return nil, err
	}
	var resp fbPosts
	err := m.fetch(ctx, s, models.PlatformFacebook, s.FacebookPageID+"/posts", url.Values{
		"fields": {"message,created_time,shares"},
		"limit":  {clampLimit(limit)},
	}, &resp)
	if err != nil {
		return nil, err
	}
	out := make([]models.ContentItem, 0, len(resp.Data))
	for _, it := range resp.Data {
		var shares int64
		if it.Shares != nil {
			shares = it.Shares.Count
		}
		out = append(out, models.ContentItem{
			ID:          it.ID,
			Title:       title(it.Message, "Untitled Post"),
			Platform:    models.PlatformFacebook,
			ContentType: models.ContentPost,
			PublishDate: datePart(it.CreatedTime),
			Shares:      shares,
		})
	}
	return out, nil
}

// title recorta a 80 runas; vacío usa def.
func title(s, def string) string {
	if s == "" {
		return def
	}
	r := []rune(s)
	if len(r) > titleMaxRunes {
		return string(r[:titleMaxRunes])
	}
	return s
}
