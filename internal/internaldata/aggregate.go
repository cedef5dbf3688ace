package internaldata

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"priceintel/internal/domain/pricing"
)

const maxMetaValues = 5

// Aggregate reduces matched sale rows into a single InternalRecord. The
// representative price prefers the mean realized sale price and falls back
// to the mean production price when nothing in the group has sold yet.
func Aggregate(rows []SaleRow, identifier string) *pricing.InternalRecord {
	if len(rows) == 0 {
		return nil
	}

	var soldCount, soldPriceCount, daysSum, daysCount int
	var soldPriceSum, productionSum float64
	categoryCounts := map[string]int{}
	departments := newUniqueList(0)
	brands := newUniqueList(maxMetaValues)
	subcategories := newUniqueList(maxMetaValues)

	for _, row := range rows {
		productionSum += row.ProductionPrice
		if row.Sold() {
			soldCount++
			if row.SoldPrice != nil {
				soldPriceSum += *row.SoldPrice
				soldPriceCount++
			}
		}
		if row.DaysToSell != nil {
			daysSum += *row.DaysToSell
			daysCount++
		}
		categoryCounts[row.Category]++
		departments.add(row.Department)
		brands.add(row.Brand)
		subcategories.add(row.Subcategory)
	}

	avgProduction := productionSum / float64(len(rows))
	price := avgProduction
	if soldPriceCount > 0 {
		if avg := soldPriceSum / float64(soldPriceCount); avg > 0 {
			price = avg
		}
	}

	daysOnShelf := 0
	if daysCount > 0 {
		daysOnShelf = int(math.Round(float64(daysSum) / float64(daysCount)))
	}

	record := &pricing.InternalRecord{
		InternalPrice:   math.Round(price*100) / 100,
		SellThroughRate: float64(soldCount) / float64(len(rows)),
		DaysOnShelf:     daysOnShelf,
		Category:        modeCategory(categoryCounts),
		SampleSize:      len(rows),
		Meta: pricing.InternalMeta{
			ProductionPrice: math.Round(avgProduction*100) / 100,
			SoldItems:       soldCount,
			UnsoldItems:     len(rows) - soldCount,
			Departments:     departments.values,
			Brands:          brands.values,
			Subcategories:   subcategories.values,
		},
	}

	log.Info().Str("term", identifier).Int("items", record.SampleSize).
		Float64("price", record.InternalPrice).
		Float64("sell_through", record.SellThroughRate).
		Msg("Aggregated internal sales data")

	return record
}

// modeCategory picks the most frequent category, ties broken
// lexicographically for deterministic output.
func modeCategory(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	best, bestCount := "Unknown", 0
	for _, name := range names {
		if counts[name] > bestCount {
			best, bestCount = name, counts[name]
		}
	}
	return best
}

// uniqueList keeps insertion-ordered unique strings up to an optional cap.
type uniqueList struct {
	seen   map[string]bool
	values []string
	limit  int
}

func newUniqueList(limit int) *uniqueList {
	return &uniqueList{seen: map[string]bool{}, limit: limit}
}

func (u *uniqueList) add(v string) {
	if v == "" || u.seen[v] {
		return
	}
	if u.limit > 0 && len(u.values) >= u.limit {
		return
	}
	u.seen[v] = true
	u.values = append(u.values, v)
}
