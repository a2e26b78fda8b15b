package product

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/wichananm65/drone-shop-backend/internal/infrastructure/database/postgres"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	selectProducts = `
		SELECT p.id, p.seller_id, p.name, p.description, p.price, p.stock_quantity, p.category, p.image_url,
			COALESCE(u.full_name, ''), COALESCE(u.email, ''), p.created_at, p.updated_at
		FROM products p
		LEFT JOIN users u ON u.id = p.seller_id
	`
	orderNewestFirst = ` ORDER BY p.created_at DESC, p.id DESC`

	getProductQuery    = selectProducts + `WHERE p.id = $1`
	listBySellerQuery  = selectProducts + `WHERE p.seller_id = $1` + orderNewestFirst
	deleteProductQuery = `DELETE FROM products WHERE id = $1`

	insertProductQuery = `
		INSERT INTO products (seller_id, name, description, price, stock_quantity, category, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Product, error) {
	query, args := buildListQuery(f)
	return r.query(ctx, query, args...)
}

// buildListQuery appends one placeholder per active filter; values are never
// interpolated into the SQL text.
func buildListQuery(f Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.ID != 0 {
		conds = append(conds, "p.id = "+next(f.ID))
	}
	if f.Category != "" {
		conds = append(conds, "p.category = "+next(f.Category))
	}
	if f.Search != "" {
		ph := next("%" + likeEscaper.Replace(f.Search) + "%")
		conds = append(conds, "(p.name ILIKE "+ph+" OR p.description ILIKE "+ph+")")
	}

	query := selectProducts
	if len(conds) > 0 {
		query += "WHERE " + strings.Join(conds, " AND ")
	}
	return query + orderNewestFirst, args
}

func (r *PostgresRepository) ListBySeller(ctx context.Context, sellerID int64) ([]Product, error) {
	return r.query(ctx, listBySellerQuery, sellerID)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *Product) error {
	err := r.db.QueryRowContext(ctx, insertProductQuery,
		p.SellerID,
		p.Name,
		nullString(p.Description),
		p.Price,
		p.StockQuantity,
		p.Category,
		nullString(p.ImageURL),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil && postgres.IsForeignKeyViolation(err) {
		return ErrSellerNotFound
	}
	return err
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, c Changes) (bool, error) {
	query, args := buildUpdateQuery(id, c)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func buildUpdateQuery(id int64, c Changes) (string, []any) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if c.Name != nil {
		set("name", *c.Name)
	}
	if c.Description != nil {
		set("description", *c.Description)
	}
	if c.Price != nil {
		set("price", *c.Price)
	}
	if c.StockQuantity != nil {
		set("stock_quantity", *c.StockQuantity)
	}
	if c.Category != nil {
		set("category", *c.Category)
	}
	if c.ImageURL != nil {
		set("image_url", *c.ImageURL)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	return "UPDATE products SET " + strings.Join(sets, ", ") + " WHERE id = $" + strconv.Itoa(len(args)), args
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return false, ErrInUse
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanProduct(scanner rowScanner) (Product, error) {
	var (
		p           Product
		description sql.NullString
		imageURL    sql.NullString
	)
	err := scanner.Scan(&p.ID, &p.SellerID, &p.Name, &description, &p.Price, &p.StockQuantity, &p.Category,
		&imageURL, &p.SellerName, &p.SellerEmail, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if description.Valid {
		p.Description = &description.String
	}
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}
	return p, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
