package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryRepository_Create_ShouldRejectDuplicateID(t *testing.T) {
	// given
	repo := NewMemoryRepository()
	rec := &MediaRecord{ID: "id-1", Filename: "cat.jpg", Owner: "user1", Status: StatusProcessing}

	// when
	first := repo.Create(rec)
	second := repo.Create(rec)

	// then
	assert.NoError(t, first)
	assert.Error(t, second)
}

func TestMemoryRepository_List_ShouldReturnNewestFirstAndBeIdempotent(t *testing.T) {
	// given
	repo := NewMemoryRepository()
	assert.NoError(t, repo.Create(&MediaRecord{ID: "old", Filename: "a.jpg", Status: StatusPending, CreatedAt: 100}))
	assert.NoError(t, repo.Create(&MediaRecord{ID: "new", Filename: "b.jpg", Status: StatusPending, CreatedAt: 200}))

	// when
	first, err1 := repo.List()
	second, err2 := repo.List()

	// then
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Len(t, first, 2)
	assert.Equal(t, "new", first[0].ID)
	assert.Equal(t, "old", first[1].ID)
	assert.Equal(t, first, second)
}

func TestMemoryRepository_MarkCompleted_ShouldSetThumbnailAndKindAtomically(t *testing.T) {
	// given
	repo := NewMemoryRepository()
	assert.NoError(t, repo.Create(&MediaRecord{ID: "id-1", Filename: "cat.jpg", Kind: KindImage, Status: StatusProcessing}))

	// when
	err := repo.MarkCompleted("id-1", "cat.jpg", KindImage)

	// then
	assert.NoError(t, err)
	rec, err := repo.GetByID("id-1")
	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Equal(t, "cat.jpg", rec.Thumbnail)
	assert.Equal(t, KindImage, rec.Kind)
}

func TestMemoryRepository_MarkFailed_ShouldLeaveThumbnailEmpty(t *testing.T) {
	// given
	repo := NewMemoryRepository()
	assert.NoError(t, repo.Create(&MediaRecord{ID: "id-1", Filename: "bad.jpg", Kind: KindImage, Status: StatusProcessing}))

	// when
	err := repo.MarkFailed("id-1")

	// then
	assert.NoError(t, err)
	rec, err := repo.GetByID("id-1")
	assert.NoError(t, err)
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Empty(t, rec.Thumbnail)
}

func TestMemoryRepository_GetByID_ShouldReturnCopies(t *testing.T) {
	// given
	repo := NewMemoryRepository()
	assert.NoError(t, repo.Create(&MediaRecord{ID: "id-1", Filename: "cat.jpg", Status: StatusProcessing}))

	// when
	rec, err := repo.GetByID("id-1")
	assert.NoError(t, err)
	rec.Status = StatusFailed

	// then
	stored, err := repo.GetByID("id-1")
	assert.NoError(t, err)
	assert.Equal(t, StatusProcessing, stored.Status)
}

func TestMemoryRepository_UpdateStatus_ShouldFailForUnknownRecord(t *testing.T) {
	repo := NewMemoryRepository()

	assert.Error(t, repo.UpdateStatus("missing", StatusProcessing))
	assert.Error(t, repo.MarkCompleted("missing", "x.jpg", KindImage))
	assert.Error(t, repo.MarkFailed("missing"))
}
