package cart

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wichananm65/drone-shop-backend/internal/infrastructure/database/postgres"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	productSellerQuery = `SELECT seller_id FROM products WHERE id = $1`

	upsertItemQuery = `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		WHERE cart_items.quantity + EXCLUDED.quantity <= $4
		RETURNING id
	`
	updateQuantityQuery = `UPDATE cart_items SET quantity = $1 WHERE id = $2`
	deleteItemQuery     = `DELETE FROM cart_items WHERE id = $1`

	listByUserQuery = `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at,
			p.name, p.price, p.image_url, p.stock_quantity, c.quantity * p.price AS item_total
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ProductSeller(ctx context.Context, productID int64) (int64, error) {
	var sellerID int64
	if err := r.db.QueryRowContext(ctx, productSellerQuery, productID).Scan(&sellerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrProductNotFound
		}
		return 0, err
	}
	return sellerID, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, userID, productID int64, qty int) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, upsertItemQuery, userID, productID, qty, MaxQuantity).Scan(&id)
	if err != nil {
		// the conflict branch skipped its update
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrQuantityLimit
		}
		// the product was checked just before; a FK failure here is the user
		if postgres.IsForeignKeyViolation(err) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return id, nil
}

func (r *PostgresRepository) UpdateQuantity(ctx context.Context, itemID int64, qty int) (bool, error) {
	return execAffected(ctx, r.db, updateQuantityQuery, qty, itemID)
}

func (r *PostgresRepository) Delete(ctx context.Context, itemID int64) (bool, error) {
	return execAffected(ctx, r.db, deleteItemQuery, itemID)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, listByUserQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var (
			it       Item
			imageURL sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Quantity, &it.CreatedAt,
			&it.ProductName, &it.Price, &imageURL, &it.StockQuantity, &it.ItemTotal); err != nil {
			return nil, err
		}
		it.ImageURL = imageURL.String
		items = append(items, it)
	}
	return items, rows.Err()
}

func execAffected(ctx context.Context, db *sql.DB, query string, args ...any) (bool, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
