package category

import (
	"context"
	"database/sql"
	"sort"
	"sync"
)

// Repository provides access to category counts.
type Repository interface {
	List(ctx context.Context, limit int) ([]Category, error)
}

type PostgresRepository struct {
	db *sql.DB
}

const listCategoriesQuery = `
	SELECT category, COUNT(*)
	FROM products
	GROUP BY category
	ORDER BY COUNT(*) DESC, category
	LIMIT $1
`

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns categories ordered by product count, largest first.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, listCategoriesQuery, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Name, &c.ProductCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InMemoryRepository counts categories over a fixed list of product
// categories, one entry per product.
type InMemoryRepository struct {
	mu       sync.RWMutex
	products []string
}

func NewInMemoryRepository(productCategories []string) *InMemoryRepository {
	return &InMemoryRepository{products: append([]string(nil), productCategories...)}
}

func (r *InMemoryRepository) List(_ context.Context, limit int) ([]Category, error) {
	r.mu.RLock()
	counts := make(map[string]int)
	for _, name := range r.products {
		counts[name]++
	}
	r.mu.RUnlock()

	out := make([]Category, 0, len(counts))
	for name, n := range counts {
		out = append(out, Category{Name: name, ProductCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductCount != out[j].ProductCount {
			return out[i].ProductCount > out[j].ProductCount
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
