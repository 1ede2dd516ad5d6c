package source

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-catalog/internal/domain"
)

// Helper function to create a mock DB and PostgresSource for testing
func newMockDBAndSource(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresSource) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	src := NewPostgresSource(db)
	require.NotNil(t, src)
	return db, mock, src
}

func TestPostgresSource_FetchProducts(t *testing.T) {
	db, mock, src := newMockDBAndSource(t)
	defer db.Close()

	query := regexp.QuoteMeta(`SELECT id, title, price, category, description, image`)
	rows := sqlmock.NewRows([]string{"id", "title", "price", "category", "description", "image"}).
		AddRow(int64(1), "Red Shirt", 15.0, "clothing", "cotton", "https://img/1.png").
		AddRow(int64(2), "Blue Hat", 8.0, "accessories", nil, nil)
	mock.ExpectQuery(query).WillReturnRows(rows)

	products, err := src.FetchProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Product{
		{ID: 1, Title: "Red Shirt", Price: 15, Category: "clothing", Description: "cotton", Image: "https://img/1.png"},
		{ID: 2, Title: "Blue Hat", Price: 8, Category: "accessories"},
	}, products)

	require.NoError(t, mock.ExpectationsWereMet(), "SQLmock expectations were not met")
}

func TestPostgresSource_FetchProducts_Empty(t *testing.T) {
	db, mock, src := newMockDBAndSource(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM catalog.products`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "category", "description", "image"}))

	products, err := src.FetchProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products, "empty result should be an empty slice, not nil")
	assert.Empty(t, products)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_FetchProducts_QueryError(t *testing.T) {
	db, mock, src := newMockDBAndSource(t)
	defer db.Close()

	dbErr := errors.New("connection refused")
	mock.ExpectQuery(regexp.QuoteMeta(`FROM catalog.products`)).WillReturnError(dbErr)

	products, err := src.FetchProducts(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, dbErr))
	assert.Nil(t, products)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_FetchCategories(t *testing.T) {
	db, mock, src := newMockDBAndSource(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"name"}).AddRow("accessories").AddRow("clothing")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name FROM catalog.categories ORDER BY name ASC;`)).WillReturnRows(rows)

	categories, err := src.FetchCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"accessories", "clothing"}, categories)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_FetchCategories_ScanError(t *testing.T) {
	db, mock, src := newMockDBAndSource(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"name"}).AddRow("clothing").RowError(0, errors.New("bad row"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM catalog.categories`)).WillReturnRows(rows)

	_, err := src.FetchCategories(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iteration error")
	require.NoError(t, mock.ExpectationsWereMet())
}
