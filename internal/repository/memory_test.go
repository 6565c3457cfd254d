package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func newComplaint(owner, title string) *domain.Complaint {
	return &domain.Complaint{
		Title:       title,
		Description: "description of " + title,
		Status:      domain.ComplaintStatusPending,
		OwnerID:     owner,
	}
}

func TestMemoryComplaintRepository_CreateAssignsFields(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	ctx := context.Background()

	first := newComplaint("owner-1", "pothole")
	second := newComplaint("owner-1", "streetlight")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, second.CreatedAt.After(first.CreatedAt))
}

func TestMemoryComplaintRepository_MonotonicCreatedAtWithFrozenClock(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return frozen }
	ctx := context.Background()

	a := newComplaint("o", "a")
	b := newComplaint("o", "b")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	assert.True(t, b.CreatedAt.After(a.CreatedAt))

	list, err := repo.ListByOwner(ctx, "o")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
}

func TestMemoryComplaintRepository_ListByOwnerIsolation(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newComplaint("alice", "a1")))
	require.NoError(t, repo.Create(ctx, newComplaint("bob", "b1")))
	require.NoError(t, repo.Create(ctx, newComplaint("alice", "a2")))

	alice, err := repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alice, 2)
	for _, c := range alice {
		assert.Equal(t, "alice", c.OwnerID)
	}
	assert.Equal(t, "a2", alice[0].Title)

	nobody, err := repo.ListByOwner(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, nobody)
	assert.NotNil(t, nobody)
}

func TestMemoryComplaintRepository_ListAllCreationOrder(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	ctx := context.Background()
	for _, title := range []string{"one", "two", "three"} {
		require.NoError(t, repo.Create(ctx, newComplaint("o", title)))
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "one", all[0].Title)
	assert.Equal(t, "three", all[2].Title)
}

func TestMemoryComplaintRepository_UpdateStatus(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	ctx := context.Background()
	c := newComplaint("o", "noise")
	require.NoError(t, repo.Create(ctx, c))

	update := &domain.Complaint{ID: c.ID, Status: domain.ComplaintStatusResolved}
	require.NoError(t, repo.UpdateStatus(ctx, update))
	assert.Equal(t, "noise", update.Title, "update refreshes from the stored record")
	assert.Equal(t, c.CreatedAt, update.CreatedAt)

	stored, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusResolved, stored.Status)

	err = repo.UpdateStatus(ctx, &domain.Complaint{ID: "missing", Status: domain.ComplaintStatusResolved})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryComplaintRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	ctx := context.Background()
	url := "/uploads/a.png"
	c := newComplaint("o", "copy")
	c.ImageURL = &url
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	got.Status = domain.ComplaintStatusResolved
	*got.ImageURL = "/tampered"

	again, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusPending, again.Status)
	assert.Equal(t, "/uploads/a.png", *again.ImageURL)
}

func TestMemoryComplaintRepository_CountByStatusOmitsZero(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	ctx := context.Background()

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)

	for i := 0; i < 2; i++ {
		require.NoError(t, repo.Create(ctx, newComplaint("o", "p")))
	}
	c := newComplaint("o", "q")
	require.NoError(t, repo.Create(ctx, c))
	c.Status = domain.ComplaintStatusInProgress
	require.NoError(t, repo.UpdateStatus(ctx, c))

	counts, err = repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[domain.ComplaintStatus]int64{
		domain.ComplaintStatusPending:    2,
		domain.ComplaintStatusInProgress: 1,
	}, counts)
}

func TestMemoryComplaintRepository_ConcurrentCreate(t *testing.T) {
	repo := NewMemoryComplaintRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Create(ctx, newComplaint("o", "c")))
		}()
	}
	wg.Wait()

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 50)
	ids := make(map[string]struct{}, len(all))
	for i, c := range all {
		ids[c.ID] = struct{}{}
		if i > 0 {
			assert.True(t, c.CreatedAt.After(all[i-1].CreatedAt))
		}
	}
	assert.Len(t, ids, 50)
}

func TestMemoryUserRepository(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user := &domain.User{Username: "ravi", PasswordHash: "x", Role: domain.RoleUser}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)

	err := repo.Create(ctx, &domain.User{Username: "ravi", PasswordHash: "y", Role: domain.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicate)

	byName, err := repo.GetByUsername(ctx, "ravi")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ravi", byID.Username)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByID(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
