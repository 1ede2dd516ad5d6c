package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"storefront-catalog/internal/domain"
)

// PostgresSource seeds the catalog from PostgreSQL tables. It only reads.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource creates a new PostgresSource instance.
func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// FetchProducts returns every row of catalog.products ordered by id.
func (s *PostgresSource) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, title, price, category, description, image
		FROM catalog.products
		ORDER BY id ASC;
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("source: FetchProducts failed to query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		var description, image sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, &p.Category, &description, &image); err != nil {
			return nil, fmt.Errorf("source: FetchProducts failed to scan product row: %w", err)
		}
		p.Description = description.String
		p.Image = image.String
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("source: FetchProducts iteration error: %w", err)
	}
	return products, nil
}

// FetchCategories returns the category labels ordered by name.
func (s *PostgresSource) FetchCategories(ctx context.Context) ([]string, error) {
	query := `SELECT name FROM catalog.categories ORDER BY name ASC;`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("source: FetchCategories failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("source: FetchCategories failed to scan category row: %w", err)
		}
		categories = append(categories, name)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("source: FetchCategories iteration error: %w", err)
	}
	return categories, nil
}

// Ping checks the connection. Startup and the health endpoint call it.
func (s *PostgresSource) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresSource) Close() error {
	if s.db == nil {
		return nil
	}
	log.Info().Msg("Closing database connection pool...")
	if err := s.db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database connection pool")
		return err
	}
	log.Info().Msg("Database connection pool closed successfully.")
	return nil
}
