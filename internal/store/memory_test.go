package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/spark-tracker/internal/models"
	"github.com/AngelCh415/spark-tracker/internal/normalize"
)

func rec(date string, p models.Platform, wins int64) models.OutreachRecord {
	return models.OutreachRecord{UserID: "u1", Date: date, Platform: p, ChatsStarted: 10, Wins: wins, Nurture: 2}
}

func TestMemoryOutreachListOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore().Outreach()

	for _, r := range []models.OutreachRecord{
		rec("2025-08-01", models.PlatformFacebook, 1),
		rec("2025-08-03", models.PlatformInstagram, 2),
		rec("2025-08-02", models.PlatformFacebook, 3),
	} {
		_, err := st.Insert(ctx, r)
		require.NoError(t, err)
	}
	_, err := st.Insert(ctx, models.OutreachRecord{UserID: "other", Date: "2025-08-04", Platform: models.PlatformFacebook})
	require.NoError(t, err)

	all, err := st.List(ctx, OutreachFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2025-08-03", all[0].Date)
	assert.Equal(t, "2025-08-01", all[2].Date)

	fb, err := st.List(ctx, OutreachFilter{UserID: "u1", Platform: models.PlatformFacebook, From: "2025-08-02"})
	require.NoError(t, err)
	require.Len(t, fb, 1)
	assert.Equal(t, int64(3), fb[0].Wins)
}

func TestMemoryOutreachPartialUpdateLeavesOtherFields(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore().Outreach()
	stored, err := st.Insert(ctx, rec("2025-08-01", models.PlatformFacebook, 1))
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)

	five := int64(5)
	updated, err := st.Update(ctx, stored.ID, normalize.ToRecordPatch(models.OutreachPatch{Wins: &five}))
	require.NoError(t, err)

	assert.Equal(t, int64(5), updated.Wins)
	updated.Wins = stored.Wins
	assert.Equal(t, stored, updated)
}

func TestMemoryOutreachNotFound(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore().Outreach()

	_, err := st.Update(ctx, "missing", models.RecordPatch{"wins": 1})
	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "update outreach", se.Op)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, st.Remove(ctx, "missing"), ErrNotFound)
}

func TestMemoryOutreachRemove(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore().Outreach()
	stored, err := st.Insert(ctx, rec("2025-08-01", models.PlatformFacebook, 1))
	require.NoError(t, err)

	got, err := st.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	require.NoError(t, st.Remove(ctx, stored.ID))
	_, err = st.Get(ctx, stored.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	left, err := st.List(ctx, OutreachFilter{})
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestMemoryMessages(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore().Messages()
	mid := "m-1"
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	first, err := ms.Insert(ctx, models.InboundMessage{UserID: "u1", Platform: models.PlatformInstagram,
		SenderUsername: "ana", MessageText: "hola", MessageID: &mid, Timestamp: base, Status: models.StatusNew})
	require.NoError(t, err)
	_, err = ms.Insert(ctx, models.InboundMessage{UserID: "u1", Platform: models.PlatformFacebook,
		SenderUsername: "bob", MessageText: "hi", Timestamp: base.Add(time.Hour), Status: models.StatusNew})
	require.NoError(t, err)

	list, err := ms.List(ctx, MessageFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bob", list[0].SenderUsername)

	limited, err := ms.List(ctx, MessageFilter{UserID: "u1", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	found, err := ms.FindByMessageID(ctx, "u1", "m-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)

	missing, err := ms.FindByMessageID(ctx, "u2", "m-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	tags := []string{"lead", "hot"}
	note := "call back"
	upd, err := ms.Update(ctx, first.ID, models.MessagePatch{Tags: &tags, Notes: &note})
	require.NoError(t, err)
	assert.Equal(t, tags, upd.Tags)
	assert.Equal(t, "call back", *upd.Notes)
	assert.Equal(t, models.StatusNew, upd.Status)

	// la copia devuelta no comparte el slice interno
	upd.Tags[0] = "mutated"
	got, err := ms.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "lead", got.Tags[0])

	require.NoError(t, ms.Remove(ctx, first.ID))
	_, err = ms.Get(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryMessageStatusCompareAndSet(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore().Messages()
	msg, err := ms.Insert(ctx, models.InboundMessage{UserID: "u1", Platform: models.PlatformFacebook,
		SenderUsername: "bob", MessageText: "hi", Status: models.StatusNew})
	require.NoError(t, err)

	archived, responded, fresh := models.StatusArchived, models.StatusResponded, models.StatusNew
	_, err = ms.Update(ctx, msg.ID, models.MessagePatch{Status: &archived, ExpectStatus: &fresh})
	require.NoError(t, err)

	// la segunda escritura leyó "new" antes que la primera terminara
	_, err = ms.Update(ctx, msg.ID, models.MessagePatch{Status: &responded, ExpectStatus: &fresh})
	assert.ErrorIs(t, err, ErrStatusConflict)
	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "update message", se.Op)

	got, err := ms.Get(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, got.Status)

	_, err = ms.Update(ctx, "missing", models.MessagePatch{Status: &responded, ExpectStatus: &fresh})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDaily(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.UpsertDaily(ctx, "u1", models.PlatformYouTube, []models.DailyMetric{
		{Date: "2025-08-02", Views: 20},
		{Date: "2025-08-01", Views: 10},
	}))
	require.NoError(t, s.UpsertDaily(ctx, "u1", models.PlatformYouTube, []models.DailyMetric{
		{Date: "2025-08-02", Views: 25},
	}))

	got, err := s.ListDaily(ctx, "u1", models.PlatformYouTube)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-08-01", got[0].Date)
	assert.Equal(t, int64(25), got[1].Views)

	none, err := s.ListDaily(ctx, "u1", models.PlatformTikTok)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStoreErrorMessage(t *testing.T) {
	err := &StoreError{Op: "list outreach", Message: "select failed", Err: errors.New("boom")}
	assert.Equal(t, "store list outreach: select failed: boom", err.Error())
	assert.Equal(t, "store x: y", (&StoreError{Op: "x", Message: "y"}).Error())
}
