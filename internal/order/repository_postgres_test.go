package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap/zaptest"

	"github.com/wichananm65/drone-shop-backend/internal/apperror"
)

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Repository = (*InMemoryRepository)(nil)
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func cartRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "product_id", "name", "price", "stock_quantity", "quantity"}).
		AddRow(int64(11), int64(1), "Quad Frame", "10.00", int64(5), int64(2)).
		AddRow(int64(12), int64(2), "Brushless Motor", "12.50", int64(2), int64(2))
}

func TestPostgresPlaceOrder_Commits(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("FROM cart_items c").WithArgs(int64(1)).WillReturnRows(cartRows())
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(1), sqlmock.AnyArg(), "2024-06-01", "10:00-12:00", "12 Rotor Lane", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(100), now, now))
	mock.ExpectQuery("INSERT INTO order_items").WithArgs(int64(100), int64(1), 2, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1000), now))
	mock.ExpectQuery("INSERT INTO order_items").WithArgs(int64(100), int64(2), 2, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1001), now))
	mock.ExpectExec("UPDATE products").WithArgs(2, int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products").WithArgs(2, int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM cart_items").WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	svc := NewService(repo, nil, nil, zaptest.NewLogger(t))
	placed, err := svc.PlaceOrder(context.Background(), 1, delivery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if placed.OrderID != 100 || !placed.TotalAmount.Equal(price("45")) || len(placed.Items) != 2 {
		t.Fatalf("unexpected placement %+v", placed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresPlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("FROM cart_items c").WithArgs(int64(1)).WillReturnRows(
		sqlmock.NewRows([]string{"id", "product_id", "name", "price", "stock_quantity", "quantity"}).
			AddRow(int64(11), int64(1), "Quad Frame", "10.00", int64(5), int64(2)).
			AddRow(int64(12), int64(2), "Brushless Motor", "12.50", int64(1), int64(2)))
	mock.ExpectRollback()

	svc := NewService(repo, nil, nil, zaptest.NewLogger(t))
	_, err := svc.PlaceOrder(context.Background(), 1, delivery)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) || stockErr.ProductName != "Brushless Motor" {
		t.Fatalf("expected insufficient stock for the motor, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresPlaceOrder_GuardedDecrementRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("FROM cart_items c").WithArgs(int64(1)).WillReturnRows(
		sqlmock.NewRows([]string{"id", "product_id", "name", "price", "stock_quantity", "quantity"}).
			AddRow(int64(11), int64(1), "Quad Frame", "10.00", int64(5), int64(2)))
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(100), now, now))
	mock.ExpectQuery("INSERT INTO order_items").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1000), now))
	mock.ExpectExec("UPDATE products").WithArgs(2, int64(1)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	svc := NewService(repo, nil, nil, zaptest.NewLogger(t))
	_, err := svc.PlaceOrder(context.Background(), 1, delivery)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("zero rows affected should be reported as insufficient stock, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresPlaceOrder_CheckViolationIsInsufficientStock(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products").WithArgs(3, int64(4)).
		WillReturnError(&pgconn.PgError{Code: "23514"})
	mock.ExpectRollback()

	err := repo.WithinTx(context.Background(), func(tx Tx) error {
		ok, err := tx.DecrementStock(context.Background(), 4, 3)
		if err != nil {
			return err
		}
		if ok {
			return errors.New("expected decrement to be refused")
		}
		return ErrEmptyCart
	})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("unexpected error %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresPlaceOrder_StorageErrorRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(1)).WillReturnError(errors.New("conn closed"))
	mock.ExpectRollback()

	svc := NewService(repo, nil, nil, zaptest.NewLogger(t))
	_, err := svc.PlaceOrder(context.Background(), 1, delivery)
	if apperror.KindOf(err) != apperror.KindStorage {
		t.Fatalf("expected storage error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGet_LoadsItems(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("FROM orders o").WithArgs(int64(100)).WillReturnRows(
		sqlmock.NewRows([]string{"id", "user_id", "total_amount", "delivery_date", "delivery_time", "delivery_address", "status", "created_at", "updated_at", "full_name", "email"}).
			AddRow(int64(100), int64(1), "45.00", "2024-06-01", "10:00", "12 Rotor Lane", "shipped", now, now, "Pilot One", "one@example.com"))
	mock.ExpectQuery("FROM order_items oi").WillReturnRows(
		sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "price", "created_at", "name", "image_url"}).
			AddRow(int64(1000), int64(100), int64(1), int64(2), "10.00", now, "Quad Frame", "/uploads/img_a.png").
			AddRow(int64(1001), int64(100), int64(2), int64(2), "12.50", now, "Brushless Motor", nil))

	o, err := repo.Get(context.Background(), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Status != StatusShipped || o.BuyerName != "Pilot One" || len(o.Items) != 2 {
		t.Fatalf("unexpected order %+v", o)
	}
	if o.Items[0].ImageURL != "/uploads/img_a.png" || o.Items[1].ImageURL != "" {
		t.Errorf("unexpected image urls %+v", o.Items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGet_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM orders o").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.Get(context.Background(), 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresUpdateStatus(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("UPDATE orders SET status").WithArgs("completed", int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders SET status").WithArgs("completed", int64(4)).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.UpdateStatus(context.Background(), 3, StatusCompleted)
	if err != nil || !ok {
		t.Fatalf("expected update, got %v %v", ok, err)
	}
	ok, err = repo.UpdateStatus(context.Background(), 4, StatusCompleted)
	if err != nil || ok {
		t.Fatalf("expected missing order, got %v %v", ok, err)
	}
}
