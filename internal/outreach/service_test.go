package outreach

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/spark-tracker/internal/models"
	"github.com/AngelCh415/spark-tracker/internal/store"
)

type failingStore struct{ store.OutreachStore }

func (failingStore) Insert(context.Context, models.OutreachRecord) (models.OutreachRecord, error) {
	return models.OutreachRecord{}, &store.StoreError{Op: "insert outreach", Message: "insert failed", Err: errors.New("disk full")}
}

func TestCreateDerivesDayOfWeek(t *testing.T) {
	svc := NewService(store.NewMemoryStore().Outreach())
	got, err := svc.Create(context.Background(), "u1", models.OutreachEntry{
		Date: "2025-08-04", Platform: "Instagram", ChatsStarted: 9, Wins: 1,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Monday", got.DayOfWeek)
	assert.Equal(t, models.PlatformInstagram, got.Platform)
	assert.Equal(t, int64(9), got.ChatsStarted)
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc := NewService(store.NewMemoryStore().Outreach())
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", models.OutreachEntry{Date: "2025-08-04", Platform: models.PlatformYouTube})
	assert.ErrorIs(t, err, ErrInvalidPlatform)

	_, err = svc.Create(ctx, "u1", models.OutreachEntry{Date: "04/08/2025", Platform: models.PlatformFacebook})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestUpdateKeepsAbsentCounters(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemoryStore().Outreach())
	created, err := svc.Create(ctx, "u1", models.OutreachEntry{
		Date: "2025-08-04", Platform: models.PlatformFacebook, ChatsStarted: 10, Wins: 1, Nurture: 4,
	})
	require.NoError(t, err)

	three := int64(3)
	updated, err := svc.Update(ctx, "u1", created.ID, models.OutreachPatch{Wins: &three})
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated.Wins)
	assert.Equal(t, int64(10), updated.ChatsStarted)
	assert.Equal(t, int64(4), updated.Nurture)
	assert.Equal(t, "Monday", updated.DayOfWeek)
}

func TestUpdateRejectsOtherOwners(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemoryStore().Outreach())
	created, err := svc.Create(ctx, "u1", models.OutreachEntry{Date: "2025-08-04", Platform: models.PlatformFacebook, Wins: 1})
	require.NoError(t, err)

	nine := int64(9)
	_, err = svc.Update(ctx, "intruder", created.ID, models.OutreachPatch{Wins: &nine})
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err := svc.List(ctx, store.OutreachFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list[0].Wins)
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemoryStore().Outreach())
	for _, d := range []string{"2025-08-01", "2025-08-03", "2025-08-02"} {
		_, err := svc.Create(ctx, "u1", models.OutreachEntry{Date: d, Platform: models.PlatformFacebook})
		require.NoError(t, err)
	}
	list, err := svc.List(ctx, store.OutreachFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2025-08-03", list[0].Date)

	assert.ErrorIs(t, svc.Delete(ctx, "u2", list[0].ID), store.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, "u1", list[0].ID))
	assert.ErrorIs(t, svc.Delete(ctx, "u1", list[0].ID), store.ErrNotFound)

	_, err = svc.List(ctx, store.OutreachFilter{From: "yesterday"})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestStoreErrorsPassThrough(t *testing.T) {
	svc := NewService(failingStore{})
	_, err := svc.Create(context.Background(), "u1", models.OutreachEntry{Date: "2025-08-04", Platform: models.PlatformFacebook})

	var se *store.StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "insert outreach", se.Op)

	_, err = NewService(store.NewMemoryStore().Outreach()).Update(context.Background(), "u1", "nope", models.OutreachPatch{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
