package models

import "time"

// Session identifies the authenticated user on whose behalf a pipeline run
// executes. It is passed explicitly into every invocation; there is no
// ambient logged-in-user state anywhere in the application.
type Session struct {
	Username string `json:"username"`
}

// User is the persisted account record. PasswordHash is a bcrypt hash and is
// never exposed in API responses.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Upload is one row of the append-only upload log.
type Upload struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Filename   string    `json:"filename"`
	UploadTime time.Time `json:"upload_time"`
}

// MonthlyRevenue is one month bucket of the revenue trend, keyed by a
// sortable "2006-01" token ("Unknown" when the dataset had no date column).
type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// ProductRevenue is one product's summed revenue.
type ProductRevenue struct {
	Product string  `json:"product"`
	Revenue float64 `json:"revenue"`
}

// RegionRevenue is one region's summed revenue.
type RegionRevenue struct {
	Region  string  `json:"region"`
	Revenue float64 `json:"revenue"`
}

// CustomerSegments splits distinct customer identifiers into those seen in
// exactly one record ("new") and those seen in more than one ("repeat").
type CustomerSegments struct {
	New    int `json:"new"`
	Repeat int `json:"repeat"`
}

// KPIs are the headline numbers: total revenue and mean revenue per record.
type KPIs struct {
	TotalRevenue  float64 `json:"total_revenue"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// Report is the set of summary tables produced by one analysis run. Regions
// and Customers are nil when their source column was absent from the upload;
// the remaining tables are always populated for a successful run. No table
// is ever returned partially filled.
type Report struct {
	Monthly     []MonthlyRevenue  `json:"monthly_revenue"`
	TopProducts []ProductRevenue  `json:"top_products"`
	Regions     []RegionRevenue   `json:"region_revenue,omitempty"`
	Customers   *CustomerSegments `json:"customer_segments,omitempty"`
	KPIs        *KPIs             `json:"kpis,omitempty"`

	RecordCount     int       `json:"record_count"`
	DroppedRows     int       `json:"dropped_rows"`
	RevenueProvided bool      `json:"revenue_provided"`
	GeneratedAt     time.Time `json:"generated_at"`
}
