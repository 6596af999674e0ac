package snapshot

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"storefront-workers/internal/catalog"
)

// PostgresSource reads the products table.
type PostgresSource struct {
	db      *sql.DB
	query   string
	maxSize int
}

func NewPostgresSource(db *sql.DB, table string, maxSize int) *PostgresSource {
	return &PostgresSource{
		db:      db,
		query:   productsQuery(table),
		maxSize: maxSize,
	}
}

func productsQuery(table string) string {
	return fmt.Sprintf(`SELECT id, name, brand, category, price, original_price, discount_percentage,
       COALESCE(rating, 0), COALESCE(reviews_count, 0), description, image_url
FROM %s
ORDER BY id
LIMIT $1`, pq.QuoteIdentifier(table))
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) Load(ctx context.Context) (catalog.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, s.query, s.maxSize)
	if err != nil {
		return nil, fmt.Errorf("%w: query products: %w", ErrSnapshotLoad, err)
	}
	defer rows.Close()

	products := make([]catalog.Product, 0, 64)
	for rows.Next() {
		var (
			p                              catalog.Product
			brand, description, image      sql.NullString
			originalPrice, discountPercent sql.NullFloat64
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &brand, &p.Category, &p.Price,
			&originalPrice, &discountPercent,
			&p.Rating, &p.ReviewsCount, &description, &image,
		); err != nil {
			return nil, fmt.Errorf("%w: scan product: %v", ErrSnapshotDecode, err)
		}

		p.Brand = brand.String
		p.Description = description.String
		p.Image = image.String
		if originalPrice.Valid {
			p.OriginalPrice = &originalPrice.Float64
		}
		if discountPercent.Valid {
			p.DiscountPercentage = &discountPercent.Float64
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate products: %w", ErrSnapshotLoad, err)
	}

	return catalog.Refs(products), nil
}
