package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AngelCh415/spark-tracker/internal/models"
	"github.com/AngelCh415/spark-tracker/internal/normalize"
)

type PostgresStore struct {
	db *sqlx.DB
}

func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, storeErr("connect", "postgres unreachable", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &PostgresStore{db: db}, nil
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore { return &PostgresStore{db: db} }

func (s *PostgresStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *PostgresStore) Close() error                   { return s.db.Close() }

func (s *PostgresStore) Outreach() OutreachStore { return pgOutreach{s.db} }
func (s *PostgresStore) Messages() MessageStore  { return pgMessages{s.db} }

// la columna date es DATE; se lee siempre como YYYY-MM-DD
var outreachCols = `id, user_id, to_char(date, 'YYYY-MM-DD') AS date, day, platform, ` +
	strings.Join(normalize.Columns(), ", ") + `, created_at`

type pgOutreach struct{ db *sqlx.DB }

func (p pgOutreach) List(ctx context.Context, f OutreachFilter) ([]models.OutreachRecord, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.Platform != "" {
		add("platform = $%d", string(f.Platform))
	}
	if f.From != "" {
		add("date >= $%d", f.From)
	}
	if f.To != "" {
		add("date <= $%d", f.To)
	}
	q := "SELECT " + outreachCols + " FROM outreach_entries"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY date DESC, created_at DESC"

	out := []models.OutreachRecord{}
	if err := p.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, storeErr("list outreach", "select failed", err)
	}
	return out, nil
}

func (p pgOutreach) Get(ctx context.Context, id string) (models.OutreachRecord, error) {
	var out models.OutreachRecord
	err := p.db.GetContext(ctx, &out, "SELECT "+outreachCols+" FROM outreach_entries WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.OutreachRecord{}, notFound("get outreach", id)
	}
	if err != nil {
		return models.OutreachRecord{}, storeErr("get outreach", "select failed", err)
	}
	return out, nil
}

func (p pgOutreach) Insert(ctx context.Context, rec models.OutreachRecord) (models.OutreachRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	cols := normalize.Columns()
	q := `INSERT INTO outreach_entries (id, user_id, date, day, platform, ` + strings.Join(cols, ", ") + `)
		VALUES (:id, :user_id, :date, :day, :platform, :` + strings.Join(cols, ", :") + `)
		RETURNING ` + outreachCols
	rows, err := p.db.NamedQueryContext(ctx, q, rec)
	if err != nil {
		return models.OutreachRecord{}, storeErr("insert outreach", "insert failed", err)
	}
	defer rows.Close()
	var out models.OutreachRecord
	if !rows.Next() {
		return models.OutreachRecord{}, storeErr("insert outreach", "no row returned", rows.Err())
	}
	if err := rows.StructScan(&out); err != nil {
		return models.OutreachRecord{}, storeErr("insert outreach", "scan failed", err)
	}
	return out, nil
}

func (p pgOutreach) Update(ctx context.Context, id string, patch models.RecordPatch) (models.OutreachRecord, error) {
	cols := normalize.SortedColumns(patch)
	var out models.OutreachRecord
	var err error
	if len(cols) == 0 {
		err = p.db.GetContext(ctx, &out, "SELECT "+outreachCols+" FROM outreach_entries WHERE id = $1", id)
	} else {
		sets := make([]string, len(cols))
		args := make([]any, 0, len(cols)+1)
		for i, c := range cols {
			sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
			args = append(args, patch[c])
		}
		args = append(args, id)
		q := fmt.Sprintf("UPDATE outreach_entries SET %s WHERE id = $%d RETURNING %s",
			strings.Join(sets, ", "), len(args), outreachCols)
		err = p.db.GetContext(ctx, &out, q, args...)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return models.OutreachRecord{}, notFound("update outreach", id)
	}
	if err != nil {
		return models.OutreachRecord{}, storeErr("update outreach", "update failed", err)
	}
	return out, nil
}

func (p pgOutreach) Remove(ctx context.Context, id string) error {
	return removeByID(ctx, p.db, "outreach_entries", "remove outreach", id)
}

const messageCols = `id, user_id, platform, sender_username, sender_name, message_text, message_id,
	conversation_id, timestamp, status, tags, notes, created_at, updated_at`

type messageRow struct {
	models.InboundMessage
	Tags pq.StringArray `db:"tags"`
}

func (r messageRow) model() models.InboundMessage {
	m := r.InboundMessage
	if r.Tags != nil {
		m.Tags = []string(r.Tags)
	}
	return m
}

type pgMessages struct{ db *sqlx.DB }

func (p pgMessages) List(ctx context.Context, f MessageFilter) ([]models.InboundMessage, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.Platform != "" {
		add("platform = $%d", string(f.Platform))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	q := "SELECT " + messageCols + " FROM inbound_messages"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY timestamp DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	var rows []messageRow
	if err := p.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, storeErr("list messages", "select failed", err)
	}
	out := make([]models.InboundMessage, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

func (p pgMessages) Get(ctx context.Context, id string) (models.InboundMessage, error) {
	var r messageRow
	err := p.db.GetContext(ctx, &r, "SELECT "+messageCols+" FROM inbound_messages WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.InboundMessage{}, notFound("get message", id)
	}
	if err != nil {
		return models.InboundMessage{}, storeErr("get message", "select failed", err)
	}
	return r.model(), nil
}

func (p pgMessages) FindByMessageID(ctx context.Context, userID, messageID string) (*models.InboundMessage, error) {
	var r messageRow
	err := p.db.GetContext(ctx, &r,
		"SELECT "+messageCols+" FROM inbound_messages WHERE user_id = $1 AND message_id = $2 LIMIT 1",
		userID, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find message", "select failed", err)
	}
	m := r.model()
	return &m, nil
}

func (p pgMessages) Insert(ctx context.Context, msg models.InboundMessage) (models.InboundMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	var r messageRow
	err := p.db.GetContext(ctx, &r, `INSERT INTO inbound_messages
		(id, user_id, platform, sender_username, sender_name, message_text, message_id,
		 conversation_id, timestamp, status, tags, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+messageCols,
		msg.ID, msg.UserID, string(msg.Platform), msg.SenderUsername, msg.SenderName, msg.MessageText,
		msg.MessageID, msg.ConversationID, msg.Timestamp, string(msg.Status), pq.StringArray(msg.Tags), msg.Notes)
	if err != nil {
		return models.InboundMessage{}, storeErr("insert message", "insert failed", err)
	}
	return r.model(), nil
}

func (p pgMessages) Update(ctx context.Context, id string, patch models.MessagePatch) (models.InboundMessage, error) {
	sets := []string{"updated_at = now()"}
	var args []any
	if patch.Status != nil {
		args = append(args, string(*patch.Status))
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if patch.Notes != nil {
		args = append(args, *patch.Notes)
		sets = append(sets, fmt.Sprintf("notes = $%d", len(args)))
	}
	if patch.Tags != nil {
		args = append(args, pq.StringArray(*patch.Tags))
		sets = append(sets, fmt.Sprintf("tags = $%d", len(args)))
	}
	args = append(args, id)
	where := fmt.Sprintf("id = $%d", len(args))
	if patch.ExpectStatus != nil {
		args = append(args, string(*patch.ExpectStatus))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	q := fmt.Sprintf("UPDATE inbound_messages SET %s WHERE %s RETURNING %s",
		strings.Join(sets, ", "), where, messageCols)
	var r messageRow
	err := p.db.GetContext(ctx, &r, q, args...)
	if errors.Is(err, sql.ErrNoRows) {
		if patch.ExpectStatus != nil {
			// distinguir id inexistente de estado cambiado
			if _, gerr := p.Get(ctx, id); gerr == nil {
				return models.InboundMessage{}, statusConflict("update message", id, *patch.ExpectStatus)
			}
		}
		return models.InboundMessage{}, notFound("update message", id)
	}
	if err != nil {
		return models.InboundMessage{}, storeErr("update message", "update failed", err)
	}
	return r.model(), nil
}

func (p pgMessages) Remove(ctx context.Context, id string) error {
	return removeByID(ctx, p.db, "inbound_messages", "remove message", id)
}

func (s *PostgresStore) UpsertDaily(ctx context.Context, userID string, p models.Platform, rows []models.DailyMetric) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeErr("upsert daily", "begin failed", err)
	}
	defer tx.Rollback()
	for _, r := range rows {
		_, err := tx.ExecContext(ctx, `INSERT INTO daily_metrics
			(user_id, platform, date, views, likes, comments, shares, subscribers)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (user_id, platform, date) DO UPDATE SET
				views = EXCLUDED.views,
				likes = EXCLUDED.likes,
				comments = EXCLUDED.comments,
				shares = EXCLUDED.shares,
				subscribers = EXCLUDED.subscribers`,
			userID, string(p), r.Date, r.Views, r.Likes, r.Comments, r.Shares, r.Subscribers)
		if err != nil {
			return storeErr("upsert daily", "insert failed for "+r.Date, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storeErr("upsert daily", "commit failed", err)
	}
	return nil
}

func (s *PostgresStore) ListDaily(ctx context.Context, userID string, p models.Platform) ([]models.DailyMetric, error) {
	out := []models.DailyMetric{}
	err := s.db.SelectContext(ctx, &out, `SELECT to_char(date, 'YYYY-MM-DD') AS date,
		views, likes, comments, shares, subscribers
		FROM daily_metrics WHERE user_id = $1 AND platform = $2 ORDER BY date ASC`, userID, string(p))
	if err != nil {
		return nil, storeErr("list daily", "select failed", err)
	}
	return out, nil
}

func removeByID(ctx context.Context, db *sqlx.DB, table, op, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return storeErr(op, "delete failed", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr(op, "rows affected", err)
	}
	if n == 0 {
		return notFound(op, id)
	}
	return nil
}

var (
	_ OutreachStore    = pgOutreach{}
	_ MessageStore     = pgMessages{}
	_ DailyMetricStore = (*PostgresStore)(nil)
)
