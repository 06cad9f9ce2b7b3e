package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/AngelCh415/spark-tracker/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrStatusConflict = errors.New("status changed concurrently")
)

// StoreError wraps every failure coming out of a record store.
type StoreError struct {
	Op      string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("store %s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op, msg string, err error) error {
	return &StoreError{Op: op, Message: msg, Err: err}
}

func notFound(op, id string) error {
	return storeErr(op, "id "+id, ErrNotFound)
}

func statusConflict(op, id string, want models.MessageStatus) error {
	return storeErr(op, fmt.Sprintf("id %s is no longer %s", id, want), ErrStatusConflict)
}

// NotFound builds the error a store returns for a missing id.
func NotFound(op, id string) error { return notFound(op, id) }

// OutreachFilter: campos vacíos no filtran. From/To son fechas ISO inclusivas.
type OutreachFilter struct {
	UserID   string
	Platform models.Platform
	From     string
	To       string
}

func (f OutreachFilter) match(r models.OutreachRecord) bool {
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.Platform != "" && r.Platform != f.Platform {
		return false
	}
	if f.From != "" && r.Date < f.From {
		return false
	}
	if f.To != "" && r.Date > f.To {
		return false
	}
	return true
}

type MessageFilter struct {
	UserID   string
	Platform models.Platform
	Status   models.MessageStatus
	Limit    int
}

func (f MessageFilter) match(m models.InboundMessage) bool {
	if f.UserID != "" && m.UserID != f.UserID {
		return false
	}
	if f.Platform != "" && m.Platform != f.Platform {
		return false
	}
	if f.Status != "" && m.Status != f.Status {
		return false
	}
	return true
}

// OutreachStore lists newest date first.
type OutreachStore interface {
	List(ctx context.Context, f OutreachFilter) ([]models.OutreachRecord, error)
	Get(ctx context.Context, id string) (models.OutreachRecord, error)
	Insert(ctx context.Context, rec models.OutreachRecord) (models.OutreachRecord, error)
	Update(ctx context.Context, id string, patch models.RecordPatch) (models.OutreachRecord, error)
	Remove(ctx context.Context, id string) error
}

// MessageStore lists newest timestamp first.
type MessageStore interface {
	List(ctx context.Context, f MessageFilter) ([]models.InboundMessage, error)
	Get(ctx context.Context, id string) (models.InboundMessage, error)
	FindByMessageID(ctx context.Context, userID, messageID string) (*models.InboundMessage, error)
	Insert(ctx context.Context, msg models.InboundMessage) (models.InboundMessage, error)
	Update(ctx context.Context, id string, patch models.MessagePatch) (models.InboundMessage, error)
	Remove(ctx context.Context, id string) error
}

// DailyMetricStore keeps one row per owner, platform and date; List is ascending by date.
type DailyMetricStore interface {
	UpsertDaily(ctx context.Context, userID string, p models.Platform, rows []models.DailyMetric) error
	ListDaily(ctx context.Context, userID string, p models.Platform) ([]models.DailyMetric, error)
}
