package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ComplaintRepository encapsulates complaint persistence.
// Every method is atomic with respect to a single record.
type ComplaintRepository interface {
	// Create assigns ID and CreatedAt and stores the complaint.
	Create(ctx context.Context, complaint *domain.Complaint) error
	// UpdateStatus persists complaint.Status and refreshes complaint from the stored row.
	UpdateStatus(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	// ListByOwner returns the owner's complaints, most recent first.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Complaint, error)
	// ListAll returns every complaint in creation order.
	ListAll(ctx context.Context) ([]domain.Complaint, error)
	// CountByStatus returns counts for the statuses present; absent statuses have no key.
	CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int64, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates a Postgres-backed repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, title, description, status, image_url, user_id, created_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (title, description, status, image_url, user_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		complaint.Title,
		complaint.Description,
		complaint.Status,
		complaint.ImageURL,
		complaint.OwnerID,
	).Scan(&complaint.ID, &complaint.CreatedAt)
	return translate(err)
}

func (r *complaintRepository) UpdateStatus(ctx context.Context, complaint *domain.Complaint) error {
	if !validID(complaint.ID) {
		return ErrNotFound
	}
	const query = `
        UPDATE complaints SET status=$1
        WHERE id=$2
        RETURNING ` + complaintColumns
	row := r.pool.QueryRow(ctx, query, complaint.Status, complaint.ID)
	return translate(scanComplaint(row, complaint))
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	const query = `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	var complaint domain.Complaint
	if err := scanComplaint(r.pool.QueryRow(ctx, query, id), &complaint); err != nil {
		return nil, translate(err)
	}
	return &complaint, nil
}

func (r *complaintRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Complaint, error) {
	if !validID(ownerID) {
		return []domain.Complaint{}, nil
	}
	const query = `SELECT ` + complaintColumns + `
        FROM complaints WHERE user_id=$1
        ORDER BY created_at DESC, seq DESC`
	return r.list(ctx, query, ownerID)
}

func (r *complaintRepository) ListAll(ctx context.Context) ([]domain.Complaint, error) {
	const query = `SELECT ` + complaintColumns + ` FROM complaints ORDER BY created_at, seq`
	return r.list(ctx, query)
}

func (r *complaintRepository) CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int64, error) {
	const query = `SELECT status, COUNT(*) FROM complaints GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ComplaintStatus]int64)
	for rows.Next() {
		var (
			status domain.ComplaintStatus
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *complaintRepository) list(ctx context.Context, query string, args ...any) ([]domain.Complaint, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Complaint{}
	for rows.Next() {
		var complaint domain.Complaint
		if err := scanComplaint(rows, &complaint); err != nil {
			return nil, err
		}
		result = append(result, complaint)
	}
	return result, rows.Err()
}

func scanComplaint(row pgx.Row, complaint *domain.Complaint) error {
	return row.Scan(
		&complaint.ID,
		&complaint.Title,
		&complaint.Description,
		&complaint.Status,
		&complaint.ImageURL,
		&complaint.OwnerID,
		&complaint.CreatedAt,
	)
}
