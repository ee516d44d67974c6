package pipeline

import (
	"context"
	"slices"
	"strings"
	"time"

	"bizpulse/internal/models"
	"golang.org/x/sync/errgroup"
)

// Aggregate produces the summary tables from a normalized batch. Each table
// is guarded by its own column-presence check and computed independently, so
// a missing optional column leaves that one table nil while the others still
// populate. Every goroutine writes a distinct Report field.
func (p *Pipeline) Aggregate(ctx context.Context, b *Batch) *models.Report {
	report := &models.Report{
		RecordCount:     len(b.Records),
		DroppedRows:     b.Dropped,
		RevenueProvided: b.RevenueProvided,
		GeneratedAt:     time.Now().UTC(),
	}

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		report.Monthly = monthlyRevenue(b.Records)
		return nil
	})
	g.Go(func() error {
		report.TopProducts = topProducts(b.Records, topProductCount)
		return nil
	})
	g.Go(func() error {
		if b.HasRegion {
			report.Regions = regionRevenue(b.Records)
		}
		return nil
	})
	g.Go(func() error {
		if b.HasCustomer {
			report.Customers = customerSegments(b.Records)
		}
		return nil
	})
	g.Go(func() error {
		report.KPIs = kpis(b.Records)
		return nil
	})

	g.Wait()
	return report
}

func monthlyRevenue(records []Record) []models.MonthlyRevenue {
	byMonth := make(map[string]float64)
	for _, rec := range records {
		byMonth[rec.Month] += rec.Revenue
	}

	result := make([]models.MonthlyRevenue, 0, len(byMonth))
	for month, revenue := range byMonth {
		result = append(result, models.MonthlyRevenue{Month: month, Revenue: revenue})
	}
	slices.SortFunc(result, func(a, b models.MonthlyRevenue) int {
		return strings.Compare(a.Month, b.Month)
	})
	return result
}

// topProducts sums revenue per product and keeps the n highest. The sort is
// stable over first-encounter order, so ties resolve to whichever product
// appeared first in the upload.
func topProducts(records []Record, n int) []models.ProductRevenue {
	index := make(map[string]int)
	result := make([]models.ProductRevenue, 0)
	for _, rec := range records {
		i, ok := index[rec.Product]
		if !ok {
			i = len(result)
			index[rec.Product] = i
			result = append(result, models.ProductRevenue{Product: rec.Product})
		}
		result[i].Revenue += rec.Revenue
	}

	slices.SortStableFunc(result, func(a, b models.ProductRevenue) int {
		if a.Revenue > b.Revenue {
			return -1
		}
		if a.Revenue < b.Revenue {
			return 1
		}
		return 0
	})

	if len(result) > n {
		result = result[:n]
	}
	return result
}

func regionRevenue(records []Record) []models.RegionRevenue {
	byRegion := make(map[string]float64)
	for _, rec := range records {
		byRegion[rec.Region] += rec.Revenue
	}

	result := make([]models.RegionRevenue, 0, len(byRegion))
	for region, revenue := range byRegion {
		result = append(result, models.RegionRevenue{Region: region, Revenue: revenue})
	}
	slices.SortFunc(result, func(a, b models.RegionRevenue) int {
		if a.Revenue > b.Revenue {
			return -1
		}
		if a.Revenue < b.Revenue {
			return 1
		}
		return strings.Compare(a.Region, b.Region)
	})
	return result
}

func customerSegments(records []Record) *models.CustomerSegments {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.CustomerID]++
	}

	seg := &models.CustomerSegments{}
	for _, n := range counts {
		if n == 1 {
			seg.New++
		} else {
			seg.Repeat++
		}
	}
	return seg
}

func kpis(records []Record) *models.KPIs {
	if len(records) == 0 {
		return nil
	}
	var total float64
	for _, rec := range records {
		total += rec.Revenue
	}
	return &models.KPIs{
		TotalRevenue:  total,
		AvgOrderValue: total / float64(len(records)),
	}
}
