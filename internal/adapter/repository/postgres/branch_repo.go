package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/remitline/remitline-backend/internal/domain"
)

// branchRepository implements domain.BranchStore
type branchRepository struct {
	db *DB
}

// NewBranchRepository creates a new branch repository
func NewBranchRepository(db *DB) domain.BranchStore {
	return &branchRepository{db: db}
}

// GetByID retrieves a branch by its ID
func (r *branchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Branch, error) {
	query := `SELECT id, name FROM branches WHERE id = $1`

	var branch domain.Branch
	err := r.db.QueryRow(ctx, query, id).Scan(&branch.ID, &branch.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get branch by ID: %w", mapError(err))
	}
	return &branch, nil
}

// GetPlatformBranch retrieves the designated platform/admin branch
func (r *branchRepository) GetPlatformBranch(ctx context.Context) (*domain.Branch, error) {
	query := `SELECT id, name FROM branches WHERE name = $1`

	var branch domain.Branch
	err := r.db.QueryRow(ctx, query, domain.PlatformBranchName).Scan(&branch.ID, &branch.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get platform branch: %w", mapError(err))
	}
	return &branch, nil
}

// Create creates a new branch
func (r *branchRepository) Create(ctx context.Context, branch *domain.Branch) error {
	query := `INSERT INTO branches (id, name) VALUES ($1, $2)`

	_, err := r.db.Exec(ctx, query, branch.ID, branch.Name)
	if err != nil {
		return fmt.Errorf("failed to create branch: %w", mapError(err))
	}
	return nil
}
