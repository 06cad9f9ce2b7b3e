package models

import "time"

type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
)

var Platforms = []Platform{PlatformYouTube, PlatformTikTok, PlatformInstagram, PlatformFacebook}

func (p Platform) Valid() bool {
	switch p {
	case PlatformYouTube, PlatformTikTok, PlatformInstagram, PlatformFacebook:
		return true
	}
	return false
}

// IsDM reporta si la plataforma tiene pipeline de mensajes directos.
func (p Platform) IsDM() bool { return p == PlatformFacebook || p == PlatformInstagram }

// OutreachEntry es una fila diaria del pipeline de DMs, por plataforma.
type OutreachEntry struct {
	ID             string   `json:"id"`
	Date           string   `json:"date"`
	DayOfWeek      string   `json:"dayOfWeek"`
	Platform       Platform `json:"platform"`
	ChatsStarted   int64    `json:"chatsStarted"`
	ActiveChats    int64    `json:"activeChats"`
	TriageBooked   int64    `json:"triageBooked"`
	TriageShowUp   int64    `json:"triageShowUp"`
	StrategyBooked int64    `json:"strategyBooked"`
	StrategyShowUp int64    `json:"strategyShowUp"`
	Wins           int64    `json:"wins"`
	Nurture        int64    `json:"nurture"`
	ConnectStage   int64    `json:"connectStage"`
	QualifyStage   int64    `json:"qualifyStage"`
	ConvertStage   int64    `json:"convertStage"`
}

// OutreachRecord is the persisted shape of an OutreachEntry.
type OutreachRecord struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Date           string    `db:"date" json:"date"`
	Day            string    `db:"day" json:"day"`
	Platform       Platform  `db:"platform" json:"platform"`
	ChatsStarted   int64     `db:"chats_started" json:"chats_started"`
	ActiveChats    int64     `db:"active_chats" json:"active_chats"`
	TriageBooked   int64     `db:"triage_booked" json:"triage_booked"`
	TriageShowUp   int64     `db:"triage_show_up" json:"triage_show_up"`
	StrategyBooked int64     `db:"strategy_booked" json:"strategy_booked"`
	StrategyShowUp int64     `db:"strategy_show_up" json:"strategy_show_up"`
	Wins           int64     `db:"wins" json:"wins"`
	Nurture        int64     `db:"nurture" json:"nurture"`
	ConnectStage   int64     `db:"connect_stage" json:"connect_stage"`
	QualifyStage   int64     `db:"qualify_stage" json:"qualify_stage"`
	ConvertStage   int64     `db:"convert_stage" json:"convert_stage"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// OutreachPatch carries a partial counter update; nil fields are left untouched.
type OutreachPatch struct {
	ChatsStarted   *int64 `json:"chatsStarted,omitempty"`
	ActiveChats    *int64 `json:"activeChats,omitempty"`
	TriageBooked   *int64 `json:"triageBooked,omitempty"`
	TriageShowUp   *int64 `json:"triageShowUp,omitempty"`
	StrategyBooked *int64 `json:"strategyBooked,omitempty"`
	StrategyShowUp *int64 `json:"strategyShowUp,omitempty"`
	Wins           *int64 `json:"wins,omitempty"`
	Nurture        *int64 `json:"nurture,omitempty"`
	ConnectStage   *int64 `json:"connectStage,omitempty"`
	QualifyStage   *int64 `json:"qualifyStage,omitempty"`
	ConvertStage   *int64 `json:"convertStage,omitempty"`
}

// RecordPatch: columna snake_case -> valor.
type RecordPatch map[string]int64

type PlatformFunnelStats struct {
	Platform            Platform `json:"platform"`
	TotalChatsStarted   int64    `json:"totalChatsStarted"`
	TotalActiveChats    int64    `json:"totalActiveChats"`
	TotalTriageBooked   int64    `json:"totalTriageBooked"`
	TotalTriageShowUp   int64    `json:"totalTriageShowUp"`
	TotalStrategyBooked int64    `json:"totalStrategyBooked"`
	TotalStrategyShowUp int64    `json:"totalStrategyShowUp"`
	TotalWins           int64    `json:"totalWins"`
	TotalNurture        int64    `json:"totalNurture"`
	ConversionRate      float64  `json:"conversionRate"`
	TriageShowRate      float64  `json:"triageShowRate"`
	StrategyShowRate    float64  `json:"strategyShowRate"`
}

type StageDistribution struct {
	Connect        int64   `json:"connect"`
	Qualify        int64   `json:"qualify"`
	Convert        int64   `json:"convert"`
	Total          int64   `json:"total"`
	ConnectPercent float64 `json:"connectPercent"`
	QualifyPercent float64 `json:"qualifyPercent"`
	ConvertPercent float64 `json:"convertPercent"`
}

type MessageStatus string

const (
	StatusNew       MessageStatus = "new"
	StatusResponded MessageStatus = "responded"
	StatusArchived  MessageStatus = "archived"
)

func (s MessageStatus) Valid() bool {
	return s == StatusNew || s == StatusResponded || s == StatusArchived
}

// InboundMessage es un DM capturado por el webhook.
type InboundMessage struct {
	ID             string        `db:"id" json:"id"`
	UserID         string        `db:"user_id" json:"userId"`
	Platform       Platform      `db:"platform" json:"platform"`
	SenderUsername string        `db:"sender_username" json:"senderUsername"`
	SenderName     *string       `db:"sender_name" json:"senderName"`
	MessageText    string        `db:"message_text" json:"messageText"`
	MessageID      *string       `db:"message_id" json:"messageId"`
	ConversationID *string       `db:"conversation_id" json:"conversationId"`
	Timestamp      time.Time     `db:"timestamp" json:"timestamp"`
	Status         MessageStatus `db:"status" json:"status"`
	Tags           []string      `db:"-" json:"tags"`
	Notes          *string       `db:"notes" json:"notes"`
	CreatedAt      time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updatedAt"`
}

type MessagePatch struct {
	Status *MessageStatus
	// ExpectStatus: si no es nil, el update sólo aplica si el estado actual coincide
	ExpectStatus *MessageStatus
	Notes        *string
	Tags         *[]string
}

type MessageStats struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Responded int `json:"responded"`
	Archived  int `json:"archived"`
	Instagram int `json:"instagram"`
	Facebook  int `json:"facebook"`
}

type DailyMetric struct {
	Date        string `json:"date" db:"date"`
	Views       int64  `json:"views" db:"views"`
	Likes       int64  `json:"likes" db:"likes"`
	Comments    int64  `json:"comments" db:"comments"`
	Shares      int64  `json:"shares" db:"shares"`
	Subscribers *int64 `json:"subscribers,omitempty" db:"subscribers"`
}

type SeriesPoint struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

type ContentType string

const (
	ContentVideo ContentType = "video"
	ContentReel  ContentType = "reel"
	ContentStory ContentType = "story"
	ContentPost  ContentType = "post"
	ContentShort ContentType = "short"
)

type ContentItem struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Platform     Platform    `json:"platform"`
	ContentType  ContentType `json:"contentType"`
	PublishDate  string      `json:"publishDate"`
	Views        int64       `json:"views"`
	Likes        int64       `json:"likes"`
	Comments     int64       `json:"comments"`
	Shares       int64       `json:"shares"`
	ThumbnailURL string      `json:"thumbnailUrl,omitempty"`
}

type PlatformStats struct {
	Platform     Platform `json:"platform"`
	Name         string   `json:"name"`
	TotalViews   int64    `json:"totalViews"`
	Followers    int64    `json:"followers"`
	ContentCount int64    `json:"contentCount"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
}
