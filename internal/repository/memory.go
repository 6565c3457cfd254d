package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// MemoryComplaintRepository keeps complaints in process memory.
// It backs the service when no database is configured and serves as the store in tests.
type MemoryComplaintRepository struct {
	mu         sync.RWMutex
	complaints []*domain.Complaint
	byID       map[string]*domain.Complaint
	lastAt     time.Time
	now        func() time.Time
}

// NewMemoryComplaintRepository builds an empty in-memory store.
func NewMemoryComplaintRepository() *MemoryComplaintRepository {
	return &MemoryComplaintRepository{
		byID: make(map[string]*domain.Complaint),
		now:  time.Now,
	}
}

func (r *MemoryComplaintRepository) Create(_ context.Context, complaint *domain.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// created_at must be strictly increasing so per-owner ordering matches creation order.
	createdAt := r.now().UTC()
	if !createdAt.After(r.lastAt) {
		createdAt = r.lastAt.Add(time.Microsecond)
	}
	r.lastAt = createdAt

	complaint.ID = uuid.NewString()
	complaint.CreatedAt = createdAt

	stored := cloneComplaint(complaint)
	r.complaints = append(r.complaints, stored)
	r.byID[stored.ID] = stored
	return nil
}

func (r *MemoryComplaintRepository) UpdateStatus(_ context.Context, complaint *domain.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[complaint.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Status = complaint.Status
	*complaint = *cloneComplaint(stored)
	return nil
}

func (r *MemoryComplaintRepository) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneComplaint(stored), nil
}

func (r *MemoryComplaintRepository) ListByOwner(_ context.Context, ownerID string) ([]domain.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.Complaint{}
	for _, c := range r.complaints {
		if c.OwnerID == ownerID {
			result = append(result, *cloneComplaint(c))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryComplaintRepository) ListAll(_ context.Context) ([]domain.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Complaint, 0, len(r.complaints))
	for _, c := range r.complaints {
		result = append(result, *cloneComplaint(c))
	}
	return result, nil
}

func (r *MemoryComplaintRepository) CountByStatus(_ context.Context) (map[domain.ComplaintStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.ComplaintStatus]int64)
	for _, c := range r.complaints {
		counts[c.Status]++
	}
	return counts, nil
}

func cloneComplaint(c *domain.Complaint) *domain.Complaint {
	out := *c
	if c.ImageURL != nil {
		url := *c.ImageURL
		out.ImageURL = &url
	}
	return &out
}

// MemoryUserRepository keeps accounts in process memory.
type MemoryUserRepository struct {
	mu         sync.RWMutex
	byID       map[string]domain.User
	byUsername map[string]string
}

// NewMemoryUserRepository builds an empty in-memory user directory.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:       make(map[string]domain.User),
		byUsername: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return ErrDuplicate
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	r.byID[user.ID] = *user
	r.byUsername[user.Username] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	user := r.byID[id]
	return &user, nil
}
