package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/drone-shop-backend/internal/apperror"
)

func seededRepo() *InMemoryRepository {
	return NewInMemoryRepository([]int64{1, 9}, []Product{
		{ID: 10, SellerID: 9, Name: "Gimbal", Price: decimal.RequireFromString("49.90"), Stock: 4},
		{ID: 11, SellerID: 9, Name: "Propeller Set", Price: decimal.RequireFromString("7.25"), Stock: 40},
	})
}

func TestAdd_MergesQuantities(t *testing.T) {
	svc := NewService(seededRepo())
	ctx := context.Background()

	first, err := svc.Add(ctx, 1, 10, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Add(ctx, 1, 10, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("adding the same product should reuse the row: %d != %d", first, second)
	}

	summary, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Count != 1 || summary.Items[0].Quantity != 5 {
		t.Fatalf("expected a single row with quantity 5, got %+v", summary)
	}
	if !summary.Total.Equal(decimal.RequireFromString("249.50")) {
		t.Errorf("unexpected total %s", summary.Total)
	}
}

func TestAdd_Rejections(t *testing.T) {
	svc := NewService(seededRepo())
	ctx := context.Background()

	cases := []struct {
		name      string
		userID    int64
		productID int64
		qty       int
		want      error
		kind      apperror.Kind
	}{
		{"own product", 9, 10, 1, ErrOwnProduct, apperror.KindConflict},
		{"missing product", 1, 999, 1, ErrProductNotFound, apperror.KindNotFound},
		{"missing user", 55, 10, 1, ErrUserNotFound, apperror.KindNotFound},
		{"zero quantity", 1, 10, 0, nil, apperror.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Add(ctx, tc.userID, tc.productID, tc.qty)
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if apperror.KindOf(err) != tc.kind {
				t.Fatalf("expected kind %v, got %v", tc.kind, apperror.KindOf(err))
			}
		})
	}
}

func TestUpdateAndRemove(t *testing.T) {
	svc := NewService(seededRepo())
	ctx := context.Background()
	id, err := svc.Add(ctx, 1, 11, 1)
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Update(ctx, id, 4); err != nil {
		t.Fatalf("update: %v", err)
	}
	summary, _ := svc.List(ctx, 1)
	if summary.Items[0].Quantity != 4 || !summary.Items[0].ItemTotal.Equal(decimal.RequireFromString("29")) {
		t.Fatalf("quantity should be overwritten, got %+v", summary.Items[0])
	}

	if err := svc.Update(ctx, 404, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Update(ctx, id, -1); apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := svc.Remove(ctx, id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.Remove(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second remove should be not found, got %v", err)
	}
	summary, _ = svc.List(ctx, 1)
	if summary.Count != 0 || !summary.Total.IsZero() {
		t.Fatalf("expected empty cart, got %+v", summary)
	}
}

func TestQuantityLimit(t *testing.T) {
	svc := NewService(seededRepo())
	ctx := context.Background()

	if _, err := svc.Add(ctx, 1, 10, MaxQuantity+1); !errors.Is(err, ErrQuantityLimit) {
		t.Fatalf("expected ErrQuantityLimit, got %v", err)
	}
	id, err := svc.Add(ctx, 1, 10, MaxQuantity-1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = svc.Add(ctx, 1, 10, 2)
	if !errors.Is(err, ErrQuantityLimit) || apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("merge past the limit should be a validation error, got %v", err)
	}
	if err := svc.Update(ctx, id, MaxQuantity+1); !errors.Is(err, ErrQuantityLimit) {
		t.Fatalf("expected ErrQuantityLimit on update, got %v", err)
	}

	summary, _ := svc.List(ctx, 1)
	if summary.Items[0].Quantity != MaxQuantity-1 {
		t.Fatalf("rejected changes must leave the row alone, got %d", summary.Items[0].Quantity)
	}
}
