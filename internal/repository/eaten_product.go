package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bitelog/bite/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrEatenProductNotFound = errors.New("eaten product not found")
)

type EatenProductRepository interface {
	Create(ctx context.Context, product *model.EatenProduct) (int64, error)
	ByID(ctx context.Context, userID string, id int64) (*model.EatenProduct, error)
	ByDate(ctx context.Context, userID, date string) ([]*model.EatenProduct, error)
}

type eatenProductRepository struct {
	db *sqlx.DB
}

func NewEatenProductRepository(db *sqlx.DB) *eatenProductRepository {
	return &eatenProductRepository{db: db}
}

// Create inserts the product and returns the server-assigned id.
func (r *eatenProductRepository) Create(ctx context.Context, product *model.EatenProduct) (int64, error) {
	query := `INSERT INTO eaten_products (user_id, name, value, unit, kcalories, protein, date, image_url, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`

	var id int64
	err := r.db.QueryRowxContext(ctx, query,
		product.UserID,
		product.Name,
		product.Value,
		product.Unit,
		product.Kcalories,
		product.Protein,
		product.Date,
		product.ImageURL,
		product.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert eaten product: %w", err)
	}

	product.ID = id
	return id, nil
}

func (r *eatenProductRepository) ByID(ctx context.Context, userID string, id int64) (*model.EatenProduct, error) {
	product := &model.EatenProduct{}
	query := `SELECT * FROM eaten_products WHERE id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, product, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEatenProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (r *eatenProductRepository) ByDate(ctx context.Context, userID, date string) ([]*model.EatenProduct, error) {
	var products []*model.EatenProduct
	query := `SELECT * FROM eaten_products WHERE user_id = $1 AND date = $2 ORDER BY created_at, id`

	err := r.db.SelectContext(ctx, &products, query, userID, date)
	if err != nil {
		return nil, err
	}

	return products, nil
}
