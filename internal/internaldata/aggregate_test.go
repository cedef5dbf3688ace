package internaldata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func sampleRows() []SaleRow {
	return []SaleRow{
		{
			ItemID: "A1", Department: "Footwear", Category: "Shoes", Subcategory: "Sneakers",
			Brand: "Nike", ProductionPrice: 20.00,
			SoldDate: day("2026-01-10"), DaysToSell: intPtr(12), SoldPrice: floatPtr(34.00),
		},
		{
			ItemID: "A2", Department: "Footwear", Category: "Shoes", Subcategory: "Sneakers",
			Brand: "Nike", ProductionPrice: 22.00,
			SoldDate: day("2026-02-01"), DaysToSell: intPtr(30), SoldPrice: floatPtr(30.00),
		},
		{
			ItemID: "A3", Department: "Footwear", Category: "Shoes", Subcategory: "Running",
			Brand: "Nike", ProductionPrice: 24.00,
		},
		{
			ItemID: "A4", Department: "Apparel", Category: "Tops", Subcategory: "Shirts",
			Brand: "Adidas", ProductionPrice: 18.00,
		},
	}
}

func TestAggregate_SoldPricePreferred(t *testing.T) {
	record := Aggregate(sampleRows(), "nike sneakers")
	require.NotNil(t, record)

	assert.Equal(t, 32.00, record.InternalPrice, "mean of realized sale prices")
	assert.InDelta(t, 0.5, record.SellThroughRate, 1e-9)
	assert.Equal(t, 21, record.DaysOnShelf, "mean days to sell, rounded")
	assert.Equal(t, "Shoes", record.Category)
	assert.Equal(t, 4, record.SampleSize)
}

func TestAggregate_Meta(t *testing.T) {
	record := Aggregate(sampleRows(), "nike")
	require.NotNil(t, record)

	assert.Equal(t, 21.00, record.Meta.ProductionPrice)
	assert.Equal(t, 2, record.Meta.SoldItems)
	assert.Equal(t, 2, record.Meta.UnsoldItems)
	assert.Equal(t, []string{"Footwear", "Apparel"}, record.Meta.Departments)
	assert.Equal(t, []string{"Nike", "Adidas"}, record.Meta.Brands)
	assert.Equal(t, []string{"Sneakers", "Running", "Shirts"}, record.Meta.Subcategories)
}

func TestAggregate_ProductionFallbackWhenNothingSold(t *testing.T) {
	rows := []SaleRow{
		{ItemID: "B1", Category: "Tops", Brand: "Gap", ProductionPrice: 10.00},
		{ItemID: "B2", Category: "Tops", Brand: "Gap", ProductionPrice: 14.00},
	}

	record := Aggregate(rows, "gap")
	require.NotNil(t, record)
	assert.Equal(t, 12.00, record.InternalPrice)
	assert.Equal(t, 0.0, record.SellThroughRate)
	assert.Equal(t, 0, record.DaysOnShelf)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Nil(t, Aggregate(nil, "anything"))
}

func TestModeCategory_TieBreaksLexicographically(t *testing.T) {
	assert.Equal(t, "Pants", modeCategory(map[string]int{"Shoes": 2, "Pants": 2}))
	assert.Equal(t, "Unknown", modeCategory(map[string]int{}))
}

func TestUniqueList_CapAndDedup(t *testing.T) {
	u := newUniqueList(2)
	for _, v := range []string{"a", "b", "a", "c", ""} {
		u.add(v)
	}
	assert.Equal(t, []string{"a", "b"}, u.values)
}
