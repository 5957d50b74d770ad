package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lusapp/backend/internal/app/models"
	"github.com/lusapp/backend/internal/pkg/apperrors"
)

// GearRepository handles database operations for group gear lists
type GearRepository struct {
	db *pgxpool.Pool
}

// NewGearRepository creates a new GearRepository
func NewGearRepository(db *pgxpool.Pool) *GearRepository {
	return &GearRepository{db: db}
}

// CreateList inserts a gear list and returns its ID
func (r *GearRepository) CreateList(ctx context.Context, list *models.GearList) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO group_gear_lists (group_id, race_id, title, created_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		list.GroupID, list.RaceID, list.Title, list.CreatedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return id, nil
}

// ListByGroup retrieves a group's gear lists, newest first
func (r *GearRepository) ListByGroup(ctx context.Context, groupID int64) ([]*models.GearList, error) {
	sql := `SELECT id, group_id, race_id, title, created_by, created_at
	        FROM group_gear_lists
	        WHERE group_id = $1
	        ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, sql, groupID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var lists []*models.GearList
	for rows.Next() {
		var list models.GearList
		err := rows.Scan(&list.ID, &list.GroupID, &list.RaceID, &list.Title, &list.CreatedBy, &list.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		lists = append(lists, &list)
	}

	return lists, nil
}

// GetList retrieves one gear list
func (r *GearRepository) GetList(ctx context.Context, listID int64) (*models.GearList, error) {
	var list models.GearList
	err := r.db.QueryRow(ctx,
		"SELECT id, group_id, race_id, title, created_by, created_at FROM group_gear_lists WHERE id = $1",
		listID).Scan(&list.ID, &list.GroupID, &list.RaceID, &list.Title, &list.CreatedBy, &list.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &list, nil
}

// CreateItem inserts a gear item and returns its ID
func (r *GearRepository) CreateItem(ctx context.Context, item *models.GearItem) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO group_gear_items (list_id, description, added_by)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		item.ListID, item.Description, item.AddedBy).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return id, nil
}

// ListItems retrieves a gear list's items, oldest first
func (r *GearRepository) ListItems(ctx context.Context, listID int64) ([]*models.GearItem, error) {
	sql := `SELECT id, list_id, description, added_by, claimed_by, status, created_at, updated_at
	        FROM group_gear_items
	        WHERE list_id = $1
	        ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, sql, listID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var items []*models.GearItem
	for rows.Next() {
		var item models.GearItem
		err := rows.Scan(&item.ID, &item.ListID, &item.Description, &item.AddedBy, &item.ClaimedBy,
			&item.Status, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		items = append(items, &item)
	}

	return items, nil
}

// GetItem retrieves one gear item
func (r *GearRepository) GetItem(ctx context.Context, itemID int64) (*models.GearItem, error) {
	var item models.GearItem
	err := r.db.QueryRow(ctx,
		`SELECT id, list_id, description, added_by, claimed_by, status, created_at, updated_at
		 FROM group_gear_items WHERE id = $1`,
		itemID).Scan(&item.ID, &item.ListID, &item.Description, &item.AddedBy, &item.ClaimedBy,
		&item.Status, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &item, nil
}

// UpdateItemStatus changes an item's status. claimedBy is set when claiming
// and cleared when the item goes back to needed.
func (r *GearRepository) UpdateItemStatus(ctx context.Context, itemID int64, status models.GearItemStatus, claimedBy *int64) (*models.GearItem, error) {
	var item models.GearItem
	err := r.db.QueryRow(ctx,
		`UPDATE group_gear_items
		 SET status = $1, claimed_by = $2, updated_at = NOW()
		 WHERE id = $3
		 RETURNING id, list_id, description, added_by, claimed_by, status, created_at, updated_at`,
		status, claimedBy, itemID).Scan(&item.ID, &item.ListID, &item.Description, &item.AddedBy,
		&item.ClaimedBy, &item.Status, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &item, nil
}

// DeleteItem removes a gear item
func (r *GearRepository) DeleteItem(ctx context.Context, itemID int64) error {
	result, err := r.db.Exec(ctx, "DELETE FROM group_gear_items WHERE id = $1", itemID)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}
