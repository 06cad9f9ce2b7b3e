package ingest

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/AngelCh415/spark-tracker/internal/models"
	"github.com/AngelCh415/spark-tracker/internal/settings"
)

const DefaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

// shortMaxSeconds: un video de hasta 60s cuenta como short.
const shortMaxSeconds = 60

type YouTube struct {
	c    HTTPClient
	base string
}

func NewYouTube(c HTTPClient, baseURL string) *YouTube {
	if baseURL == "" {
		baseURL = DefaultYouTubeBaseURL
	}
	return &YouTube{c: c, base: strings.TrimRight(baseURL, "/")}
}

// YouTube answers numbers as strings.
type ytChannels struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title      string       `json:"title"`
			Thumbnails ytThumbnails `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
			ViewCount       string `json:"viewCount"`
			VideoCount      string `json:"videoCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type ytThumbnails struct {
	Default struct {
		URL string `json:"url"`
	} `json:"default"`
	Medium struct {
		URL string `json:"url"`
	} `json:"medium"`
}

type ytSearch struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type ytVideos struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string       `json:"title"`
			PublishedAt string       `json:"publishedAt"`
			Thumbnails  ytThumbnails `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

func (y *YouTube) fetch(ctx context.Context, s settings.Settings, endpoint string, params url.Values, dst any) error {
	if s.YouTubeAPIKey == "" {
		return fmt.Errorf("%w: %s", ErrMissingCredential, settings.KeyYouTubeAPIKey)
	}
	params.Set("key", s.YouTubeAPIKey)
	return GetJSONWithRetry(ctx, y.c, models.PlatformYouTube, y.base+"/"+endpoint+"?"+params.Encode(), dst)
}

func channelID(s settings.Settings) (string, error) {
	if s.YouTubeChannelID == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingCredential, settings.KeyYouTubeChannelID)
	}
	return s.YouTubeChannelID, nil
}

// ChannelStats trae suscriptores, vistas y cantidad de videos del canal configurado.
func (y *YouTube) ChannelStats(ctx context.Context, s settings.Settings) (models.PlatformStats, error) {
	id, err := channelID(s)
	if err != nil {
		return models.PlatformStats{}, err
	}
	var resp ytChannels
	if err := y.fetch(ctx, s, "channels", url.Values{"part": {"snippet,statistics"}, "id": {id}}, &resp); err != nil {
		return models.PlatformStats{}, err
	}
	if len(resp.Items) == 0 {
		return models.PlatformStats{}, &APIError{Platform: models.PlatformYouTube, Status: 404, Message: "channel not found"}
	}
	ch := resp.Items[0]
	return models.PlatformStats{
		Platform:     models.PlatformYouTube,
		Name:         ch.Snippet.Title,
		TotalViews:   atoi64(ch.Statistics.ViewCount),
		Followers:    atoi64(ch.Statistics.SubscriberCount),
		ContentCount: atoi64(ch.Statistics.VideoCount),
		ThumbnailURL: ch.Snippet.Thumbnails.Default.URL,
	}, nil
}

// RecentVideos busca los últimos videos del canal y completa sus estadísticas.
func (y *YouTube) RecentVideos(ctx context.Context, s settings.Settings, maxResults int) ([]models.ContentItem, error) {
	id, err := channelID(s)
	if err != nil {
		return nil, err
	}
	if maxResults <= 0 || maxResults > 50 {
		maxResults = 20
	}
	var search ytSearch
	err = y.fetch(ctx, s, "search", url.Values{
		"part":       {"snippet"},
		"channelId":  {id},
		"order":      {"date"},
		"maxResults": {strconv.Itoa(maxResults)},
		"type":       {"video"},
	}, &search)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(search.Items))
	for _, it := range search.Items {
		if it.ID.VideoID != "" {
			ids = append(ids, it.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return []models.ContentItem{}, nil
	}

	var vids ytVideos
	err = y.fetch(ctx, s, "videos", url.Values{
		"part": {"statistics,contentDetails,snippet"},
		"id":   {strings.Join(ids, ",")},
	}, &vids)
	if err != nil {
		return nil, err
	}
	out := make([]models.ContentItem, 0, len(vids.Items))
	for _, v := range vids.Items {
		ct := models.ContentVideo
		if ParseDuration(v.ContentDetails.Duration) <= shortMaxSeconds {
			ct = models.ContentShort
		}
		out = append(out, models.ContentItem{
			ID:           v.ID,
			Title:        v.Snippet.Title,
			Platform:     models.PlatformYouTube,
			ContentType:  ct,
			PublishDate:  datePart(v.Snippet.PublishedAt),
			Views:        atoi64(v.Statistics.ViewCount),
			Likes:        atoi64(v.Statistics.LikeCount),
			Comments:     atoi64(v.Statistics.CommentCount),
			ThumbnailURL: v.Snippet.Thumbnails.Medium.URL,
		})
	}
	return out, nil
}

var durationRe = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseDuration convierte una duración ISO-8601 (PT#H#M#S) a segundos; 0 si no matchea.
func ParseDuration(iso string) int64 {
	m := durationRe.FindStringSubmatch(iso)
	if m == nil {
		return 0
	}
	return atoi64(m[1])*3600 + atoi64(m[2])*60 + atoi64(m[3])
}

func atoi64(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func datePart(ts string) string {
	d, _, _ := strings.Cut(ts, "T")
	return d
}
