package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"bizpulse/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseCSV(t *testing.T, csv string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	return ds
}

func TestValidate_AllRequiredPresent(t *testing.T) {
	p := New(slog.Default())
	ds := parseCSV(t, "Order Date,Product,Customer ID,Quantity,Unit Price\n2024-03-01,Widget,C1,2,10.00")

	assert.NoError(t, p.Validate(ds))
}

func TestValidate_MissingColumns(t *testing.T) {
	p := New(slog.Default())
	ds := parseCSV(t, "Order Date,Product\n2024-03-01,Widget")

	err := p.Validate(ds)
	require.Error(t, err)

	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{"Customer Id", "Quantity", "Unit Price"}, missing.Columns)
}

func TestValidate_NamesNormalizedBeforeCheck(t *testing.T) {
	p := New(slog.Default())
	// messy header casing and padding must not trip validation
	ds := parseCSV(t, "  order date ,PRODUCT,customer id,quantity, unit price \n2024-03-01,Widget,C1,2,10.00")

	assert.NoError(t, p.Validate(ds))
}

func TestRun_MissingColumnProducesNoTables(t *testing.T) {
	p := New(slog.Default())
	ds := parseCSV(t, "Product,Quantity\nWidget,2")

	report, err := p.Run(context.Background(), ds)
	assert.Nil(t, report)

	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
}

func TestNormalize_ColumnNamesIdempotent(t *testing.T) {
	ds := parseCSV(t, " order date ,customer id\n2024-03-01,C1")

	ds.NormalizeColumns()
	once := append([]string(nil), ds.Columns...)
	ds.NormalizeColumns()

	assert.Equal(t, once, ds.Columns)
	assert.Equal(t, []string{"Order Date", "Customer Id"}, ds.Columns)
}

func TestNormalize_DropsUnparseableRows(t *testing.T) {
	p := New(slog.Default())
	ds := parseCSV(t, `Order Date,Product,Customer ID,Quantity,Unit Price
2024-03-01,Widget,C1,2,10.00
not-a-date,Widget,C2,1,5.00
2024-03-02,Gadget,C3,oops,5.00
2024-03-03,Gadget,C4,1,n/a
2024-03-04,Widget,C5,3,2.50`)

	before := len(ds.Rows)
	b := p.Normalize(ds)

	assert.Equal(t, 3, b.Dropped)
	assert.Equal(t, before-b.Dropped, len(b.Records))
}

func TestNormalize_StripsCurrencyAndSeparators(t *testing.T) {
	p := New(slog.Default())
	ds := parseCSV(t, "Order Date,Product,Customer ID,Quantity,Unit Price\n2024-03-01,Widget,C1,\"1,000\",$12.50")

	b := p.Normalize(ds)
	require.Len(t, b.Records, 1)
	assert.Equal(t, 1000.0, b.Records[0].Quantity)
	assert.Equal(t, 12.5, b.Records[0].UnitPrice)
}

func TestNormalize_AbsentDateColumnUsesUnknownBucket(t *testing.T) {
	p := New(slog.Default())
	ds := parseCSV(t, "Product,Customer ID,Quantity,Unit Price\nWidget,C1,2,10.00\nGadget,C2,1,5.00")

	b := p.Normalize(ds)
	require.NoError(t, p.Derive(b))

	for _, rec := range b.Records {
		assert.Equal(t, "Unknown", rec.Month)
	}

	report := p.Aggregate(context.Background(), b)
	require.Len(t, report.Monthly, 1)
	assert.Equal(t, "Unknown", report.Monthly[0].Month)
	assert.Equal(t, 25.0, report.Monthly[0].Revenue)
}

func TestDerive_ComputesRevenueExactly(t *testing.T) {
	p := New(slog.Default())
	ds := parseCSV(t, `Order Date,Product,Customer ID,Quantity,Unit Price
2024-03-01,Widget,C1,2,10.00
2024-03-02,Gadget,C2,3,2.50`)

	b := p.Normalize(ds)
	require.NoError(t, p.Derive(b))

	require.Len(t, b.Records, 2)
	assert.Equal(t, 20.0, b.Records[0].Revenue)
	assert.Equal(t, 7.5, b.Records[1].Revenue)
}

func TestDerive_TrustsProvidedRevenue(t *testing.T) {
	p := New(slog.Default())
	// provided revenue disagrees with quantity*price on purpose
	ds := parseCSV(t, "Order Date,Product,Customer ID,Quantity,Unit Price,Total Revenue\n2024-03-01,Widget,C1,2,10.00,999.99")

	b := p.Normalize(ds)
	require.NoError(t, p.Derive(b))

	require.Len(t, b.Records, 1)
	assert.Equal(t, 999.99, b.Records[0].Revenue)
	assert.True(t, b.RevenueProvided)
}

func TestDerive_MissingQuantityOrPriceIsTerminal(t *testing.T) {
	p := New(slog.Default())
	ds := parseCSV(t, "Order Date,Product,Customer ID,Total Revenue\n2024-03-01,Widget,C1,20.00")

	b := p.Normalize(ds)
	err := p.Derive(b)

	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{"Quantity", "Unit Price"}, missing.Columns)
}

func TestAggregate_MonthlyRevenueSingleBucket(t *testing.T) {
	p := New(slog.Default())
	ds := parseCSV(t, `Order Date,Product,Customer ID,Quantity,Unit Price
2024-03-01,Widget,C1,1,10.00
2024-03-15,Gadget,C2,2,5.00
2024-03-28,Widget,C3,3,1.00`)

	report, err := p.Run(context.Background(), ds)
	require.NoError(t, err)

	require.Len(t, report.Monthly, 1)
	assert.Equal(t, "2024-03", report.Monthly[0].Month)
	assert.Equal(t, 23.0, report.Monthly[0].Revenue)
}

func TestAggregate_MonthlyRevenueSortedAscending(t *testing.T) {
	p := New(slog.Default())
	ds := parseCSV(t, `Order Date,Product,Customer ID,Quantity,Unit Price
2024-03-01,Widget,C1,1,10.00
2024-01-01,Widget,C2,1,10.00
2024-02-01,Widget,C3,1,10.00`)

	report, err := p.Run(context.Background(), ds)
	require.NoError(t, err)

	months := make([]string, 0, len(report.Monthly))
	for _, m := range report.Monthly {
		months = append(months, m.Month)
	}
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, months)
}

func TestAggregate_TopFiveProductsWithStableTies(t *testing.T) {
	p := New(slog.Default())
	// A=100, B=100 (tie), C=90, D=80, E=70, F=60; F must be cut
	ds := parseCSV(t, `Order Date,Product,Customer ID,Quantity,Unit Price
2024-03-01,A,C1,1,100
2024-03-01,B,C2,1,100
2024-03-01,C,C3,1,90
2024-03-01,D,C4,1,80
2024-03-01,E,C5,1,70
2024-03-01,F,C6,1,60`)

	report, err := p.Run(context.Background(), ds)
	require.NoError(t, err)

	got := make([]string, 0, len(report.TopProducts))
	for _, pr := range report.TopProducts {
		got = append(got, pr.Product)
	}
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, got)
}

func TestAggregate_RegionAbsentOthersStillPopulate(t *testing.T) {
	p := New(slog.Default())
	ds := parseCSV(t, `Order Date,Product,Customer ID,Quantity,Unit Price
2024-03-01,Widget,C1,1,10.00
2024-04-01,Gadget,C1,2,5.00`)

	report, err := p.Run(context.Background(), ds)
	require.NoError(t, err)

	assert.Nil(t, report.Regions)
	assert.NotEmpty(t, report.Monthly)
	assert.NotEmpty(t, report.TopProducts)
	require.NotNil(t, report.Customers)
	require.NotNil(t, report.KPIs)
}

func TestAggregate_RegionRevenue(t *testing.T) {
	p := New(slog.Default())
	ds := parseCSV(t, `Order Date,Product,Customer ID,Quantity,Unit Price,Region
2024-03-01,Widget,C1,1,10.00,North
2024-03-02,Widget,C2,1,30.00,South
2024-03-03,Widget,C3,2,5.00,North`)

	report, err := p.Run(context.Background(), ds)
	require.NoError(t, err)

	require.Len(t, report.Regions, 2)
	assert.Equal(t, "South", report.Regions[0].Region)
	assert.Equal(t, 30.0, report.Regions[0].Revenue)
	assert.Equal(t, "North", report.Regions[1].Region)
	assert.Equal(t, 20.0, report.Regions[1].Revenue)
}

func TestAggregate_CustomerSegments(t *testing.T) {
	p := New(slog.Default())
	// C1 appears twice (repeat); C2, C3, C4 once each (new)
	ds := parseCSV(t, `Order Date,Product,Customer ID,Quantity,Unit Price
2024-03-01,Widget,C1,1,10.00
2024-03-02,Widget,C1,1,10.00
2024-03-03,Widget,C2,1,10.00
2024-03-04,Widget,C3,1,10.00
2024-03-05,Widget,C4,1,10.00`)

	report, err := p.Run(context.Background(), ds)
	require.NoError(t, err)

	require.NotNil(t, report.Customers)
	assert.Equal(t, 1, report.Customers.Repeat)
	assert.Equal(t, 3, report.Customers.New)
}

func TestAggregate_KPIs(t *testing.T) {
	p := New(slog.Default())
	ds := parseCSV(t, `Order Date,Product,Customer ID,Quantity,Unit Price
2024-03-01,Widget,C1,1,10.00
2024-03-02,Gadget,C2,1,30.00`)

	report, err := p.Run(context.Background(), ds)
	require.NoError(t, err)

	require.NotNil(t, report.KPIs)
	assert.Equal(t, 40.0, report.KPIs.TotalRevenue)
	assert.Equal(t, 20.0, report.KPIs.AvgOrderValue)
}

func TestAggregate_EmptyBatch(t *testing.T) {
	p := New(slog.Default())
	b := &Batch{HasRegion: true, HasCustomer: true}

	report := p.Aggregate(context.Background(), b)

	assert.Empty(t, report.Monthly)
	assert.Empty(t, report.TopProducts)
	assert.Nil(t, report.KPIs)
	assert.Equal(t, 0, report.RecordCount)
}
