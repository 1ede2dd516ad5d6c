package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceRange_Contains_Boundaries(t *testing.T) {
	tests := []struct {
		name  string
		r     PriceRange
		price float64
		want  bool
	}{
		{"under10 excludes 10", PriceRangeUnder10, 10, false},
		{"under10 includes 9.99", PriceRangeUnder10, 9.99, true},
		{"10to50 includes 10", PriceRange10To50, 10, true},
		{"10to50 includes 50", PriceRange10To50, 50, true},
		{"10to50 excludes 50.01", PriceRange10To50, 50.01, false},
		{"above50 excludes 50", PriceRangeAbove50, 50, false},
		{"above50 includes 51", PriceRangeAbove50, 51, true},
		{"all includes anything", PriceRangeAll, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Contains(tt.price))
		})
	}
}

func TestParsePriceRange(t *testing.T) {
	r, err := ParsePriceRange("")
	require.NoError(t, err)
	assert.Equal(t, PriceRangeAll, r)

	r, err = ParsePriceRange("10to50")
	require.NoError(t, err)
	assert.Equal(t, PriceRange10To50, r)

	_, err = ParsePriceRange("cheap")
	assert.Error(t, err)
}

func TestParseSortOrder(t *testing.T) {
	o, err := ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortNone, o)

	o, err = ParseSortOrder("highToLow")
	require.NoError(t, err)
	assert.Equal(t, SortHighToLow, o)

	_, err = ParseSortOrder("hightolow")
	assert.Error(t, err, "sort order values are case-sensitive")
}

func TestProductInput_WithID(t *testing.T) {
	in := ProductInput{Title: "Cap", Price: 5, Category: "accessories", Description: "x", Image: "y"}
	p := in.WithID(3)
	assert.Equal(t, int64(3), p.ID)
	assert.Equal(t, in, p.Input())
}
