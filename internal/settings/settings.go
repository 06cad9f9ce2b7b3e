// Package settings guarda las credenciales de plataforma como un valor explícito.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

const (
	KeyYouTubeAPIKey      = "youtube_api_key"
	KeyYouTubeChannelID   = "youtube_channel_id"
	KeyMetaAccessToken    = "meta_access_token"
	KeyInstagramAccountID = "instagram_account_id"
	KeyFacebookPageID     = "facebook_page_id"
)

// Keys in display order.
var Keys = []string{
	KeyYouTubeAPIKey, KeyYouTubeChannelID, KeyMetaAccessToken, KeyInstagramAccountID, KeyFacebookPageID,
}

var ErrUnknownKey = errors.New("unknown settings key")

// Settings is the set of platform credentials handed to the API clients.
type Settings struct {
	YouTubeAPIKey      string `json:"youtube_api_key"`
	YouTubeChannelID   string `json:"youtube_channel_id"`
	MetaAccessToken    string `json:"meta_access_token"`
	InstagramAccountID string `json:"instagram_account_id"`
	FacebookPageID     string `json:"facebook_page_id"`
}

func (s *Settings) field(key string) *string {
	switch key {
	case KeyYouTubeAPIKey:
		return &s.YouTubeAPIKey
	case KeyYouTubeChannelID:
		return &s.YouTubeChannelID
	case KeyMetaAccessToken:
		return &s.MetaAccessToken
	case KeyInstagramAccountID:
		return &s.InstagramAccountID
	case KeyFacebookPageID:
		return &s.FacebookPageID
	}
	return nil
}

func IsSecret(key string) bool {
	return key == KeyYouTubeAPIKey || key == KeyMetaAccessToken
}

// Masked deja ver sólo los últimos 4 caracteres de los secretos.
func (s Settings) Masked() Settings {
	out := s
	for _, k := range Keys {
		if !IsSecret(k) {
			continue
		}
		f := out.field(k)
		if n := len(*f); n > 4 {
			*f = strings.Repeat("*", n-4) + (*f)[n-4:]
		} else if n > 0 {
			*f = strings.Repeat("*", n)
		}
	}
	return out
}

// Store is a per-owner key/value store for settings.
type Store interface {
	Get(ctx context.Context, ownerID, key string) (string, bool, error)
	Set(ctx context.Context, ownerID, key, value string) error
}

// Load arma el Settings de un owner; las claves ausentes quedan vacías.
func Load(ctx context.Context, st Store, ownerID string) (Settings, error) {
	var s Settings
	for _, k := range Keys {
		v, ok, err := st.Get(ctx, ownerID, k)
		if err != nil {
			return Settings{}, err
		}
		if ok {
			*s.field(k) = v
		}
	}
	return s, nil
}

// Save writes only the keys present in values. Unknown keys fail before anything is written.
func Save(ctx context.Context, st Store, ownerID string, values map[string]string) error {
	for k := range values {
		if (&Settings{}).field(k) == nil {
			return fmt.Errorf("%w: %s", ErrUnknownKey, k)
		}
	}
	for _, k := range Keys {
		v, ok := values[k]
		if !ok {
			continue
		}
		if err := st.Set(ctx, ownerID, k, strings.TrimSpace(v)); err != nil {
			return err
		}
	}
	return nil
}

type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{m: map[string]string{}} }

func (s *MemoryStore) Get(_ context.Context, ownerID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[ownerID+"|"+key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, ownerID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[ownerID+"|"+key] = value
	return nil
}
