package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/pkg/logger"
)

type stubStatusStore struct {
	statuses []models.Status
	err      error
}

func (s *stubStatusStore) ListStatuses(ctx context.Context) ([]models.Status, error) {
	return s.statuses, s.err
}

func catalogFixture() []models.Status {
	accept := models.StepAccept
	return []models.Status{
		{ID: uuid.New(), Code: "REQSTATUS00033", Label: "submitted", Rank: 40, IsActive: true},
		{ID: uuid.New(), Code: "REQSTATUS00030", Label: "draft", Rank: 10, IsActive: true, AllowsEdit: true},
		{ID: uuid.New(), Code: "REQSTATUS00039", Label: "account-opened", Rank: 90, IsActive: true, Step: &accept},
		{ID: uuid.New(), Code: "REQSTATUS00099", Label: "retired", Rank: 99, IsActive: false},
	}
}

func newLoaded(t *testing.T) *Registry {
	t.Helper()
	r := New(&stubStatusStore{statuses: catalogFixture()}, nil, logger.NewForTesting())
	require.NoError(t, r.Load(context.Background()))
	return r
}

func TestRegistry_Load(t *testing.T) {
	t.Run("orders catalog by rank", func(t *testing.T) {
		r := newLoaded(t)
		all := r.All()
		require.Len(t, all, 4)
		assert.Equal(t, "REQSTATUS00030", all[0].Code)
		assert.Equal(t, "REQSTATUS00033", all[1].Code)
	})

	t.Run("store failure without snapshot is fatal", func(t *testing.T) {
		r := New(&stubStatusStore{err: errors.New("connection refused")}, nil, logger.NewForTesting())
		err := r.Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load status catalog")
	})

	t.Run("empty catalog is a seed problem", func(t *testing.T) {
		r := New(&stubStatusStore{}, nil, logger.NewForTesting())
		err := r.Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "seed data missing")
	})
}

func TestRegistry_FindByCode(t *testing.T) {
	r := newLoaded(t)

	s, err := r.FindByCode("REQSTATUS00030")
	require.NoError(t, err)
	assert.Equal(t, "draft", s.Label)
	assert.True(t, s.AllowsEdit)

	_, err = r.FindByCode("REQSTATUS12345")
	assert.ErrorIs(t, err, ErrStatusNotFound)
}

func TestRegistry_FindActiveByCode(t *testing.T) {
	r := newLoaded(t)

	_, err := r.FindActiveByCode("REQSTATUS00030")
	require.NoError(t, err)

	_, err = r.FindActiveByCode("REQSTATUS00099")
	assert.ErrorIs(t, err, ErrStatusInactive)

	_, err = r.FindActiveByCode("REQSTATUS00000")
	assert.ErrorIs(t, err, ErrStatusNotFound)
}

func TestRegistry_FindByID(t *testing.T) {
	r := newLoaded(t)
	want := r.All()[0]

	s, err := r.FindByID(want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.Code, s.Code)

	_, err = r.FindByID(uuid.New())
	assert.ErrorIs(t, err, ErrStatusNotFound)
}

func TestRegistry_IsTerminalStep(t *testing.T) {
	r := newLoaded(t)

	opened, err := r.FindByCode("REQSTATUS00039")
	require.NoError(t, err)
	draft, err := r.FindByCode("REQSTATUS00030")
	require.NoError(t, err)

	assert.True(t, r.IsTerminalStep(opened))
	assert.False(t, r.IsTerminalStep(draft))
	assert.False(t, r.IsTerminalStep(nil))
}
