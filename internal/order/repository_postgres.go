package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/wichananm65/drone-shop-backend/internal/infrastructure/database/postgres"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	userExistsQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

	lockCartQuery = `
		SELECT c.id, c.product_id, p.name, p.price, p.stock_quantity, c.quantity
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.product_id
		FOR UPDATE
	`
	insertOrderQuery = `
		INSERT INTO orders (user_id, total_amount, delivery_date, delivery_time, delivery_address, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	insertItemQuery = `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	decrementStockQuery = `
		UPDATE products
		SET stock_quantity = stock_quantity - $1, updated_at = NOW()
		WHERE id = $2 AND stock_quantity >= $1
	`
	clearCartQuery = `DELETE FROM cart_items WHERE user_id = $1`

	updateStatusQuery = `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`

	orderColumns = `o.id, o.user_id, o.total_amount, o.delivery_date, o.delivery_time, o.delivery_address,
		o.status, o.created_at, o.updated_at, u.full_name, u.email`

	getOrderQuery = `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`
	listByUserQuery = `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC
	`
	listBySellerQuery = `
		SELECT DISTINCT ` + orderColumns + `
		FROM orders o
		JOIN users u ON u.id = o.user_id
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		WHERE p.seller_id = $1
		ORDER BY o.created_at DESC, o.id DESC
	`
	itemsByOrdersQuery = `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, oi.created_at, p.name, p.image_url
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1::bigint[])
		ORDER BY oi.order_id, oi.id
	`
	sellerItemsByOrdersQuery = `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, oi.created_at, p.name, p.image_url
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1::bigint[]) AND p.seller_id = $2
		ORDER BY oi.order_id, oi.id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// WithinTx runs fn in a READ COMMITTED transaction.
func (r *PostgresRepository) WithinTx(ctx context.Context, fn func(Tx) error) error {
	return postgres.WithTx(ctx, r.db, postgres.ReadCommitted, func(tx *sql.Tx) error {
		return fn(&pgTx{tx: tx})
	})
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderID int64, status Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, updateStatusQuery, string(status), orderID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepository) Get(ctx context.Context, orderID int64) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderQuery, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	orders := []Order{o}
	if err := r.attachItems(ctx, orders, 0); err != nil {
		return Order{}, err
	}
	return orders[0], nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	orders, err := r.queryOrders(ctx, listByUserQuery, userID)
	if err != nil {
		return nil, err
	}
	return orders, r.attachItems(ctx, orders, 0)
}

func (r *PostgresRepository) ListBySeller(ctx context.Context, sellerID int64) ([]Order, error) {
	orders, err := r.queryOrders(ctx, listBySellerQuery, sellerID)
	if err != nil {
		return nil, err
	}
	return orders, r.attachItems(ctx, orders, sellerID)
}

func (r *PostgresRepository) queryOrders(ctx context.Context, query string, arg int64) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// attachItems loads the items of every order in one query. A non-zero
// sellerID restricts items to that seller's products.
func (r *PostgresRepository) attachItems(ctx context.Context, orders []Order, sellerID int64) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = make([]Item, 0)
	}

	var (
		rows *sql.Rows
		err  error
	)
	if sellerID != 0 {
		rows, err = r.db.QueryContext(ctx, sellerItemsByOrdersQuery, pq.Array(ids), sellerID)
	} else {
		rows, err = r.db.QueryContext(ctx, itemsByOrdersQuery, pq.Array(ids))
	}
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it       Item
			imageURL sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price, &it.CreatedAt, &it.ProductName, &imageURL); err != nil {
			return err
		}
		it.ImageURL = imageURL.String
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		o      Order
		status string
	)
	err := row.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.DeliveryDate, &o.DeliveryTime, &o.DeliveryAddress,
		&status, &o.CreatedAt, &o.UpdatedAt, &o.BuyerName, &o.BuyerEmail)
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	return o, nil
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) UserExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	if err := t.tx.QueryRowContext(ctx, userExistsQuery, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (t *pgTx) LockCart(ctx context.Context, userID int64) ([]CartLine, error) {
	rows, err := t.tx.QueryContext(ctx, lockCartQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]CartLine, 0)
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(&l.CartItemID, &l.ProductID, &l.ProductName, &l.Price, &l.Stock, &l.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (t *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	return t.tx.QueryRowContext(ctx, insertOrderQuery,
		o.UserID, o.TotalAmount, o.DeliveryDate, o.DeliveryTime, o.DeliveryAddress, string(o.Status),
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (t *pgTx) InsertItem(ctx context.Context, it *Item) error {
	return t.tx.QueryRowContext(ctx, insertItemQuery, it.OrderID, it.ProductID, it.Quantity, it.Price).
		Scan(&it.ID, &it.CreatedAt)
}

func (t *pgTx) DecrementStock(ctx context.Context, productID int64, qty int) (bool, error) {
	res, err := t.tx.ExecContext(ctx, decrementStockQuery, qty, productID)
	if err != nil {
		if postgres.IsCheckViolation(err) {
			return false, nil
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (t *pgTx) ClearCart(ctx context.Context, userID int64) error {
	_, err := t.tx.ExecContext(ctx, clearCartQuery, userID)
	return err
}
