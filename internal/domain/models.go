// internal/domain/models.go
package domain

import "time"

// Status is the derived stock status of a product.
type Status string

const (
	StatusInStock    Status = "in_stock"
	StatusLowStock   Status = "low_stock"
	StatusOutOfStock Status = "out_of_stock"
)

// EntryType identifies the kind of quantity movement recorded in the ledger.
type EntryType string

const (
	EntryReceipt        EntryType = "receipt"
	EntrySale           EntryType = "sale"
	EntryCorrection     EntryType = "correction"
	EntryShortageReport EntryType = "shortage_report"
)

// ValidEntryType reports whether t is one of the known entry types.
func ValidEntryType(t EntryType) bool {
	switch t {
	case EntryReceipt, EntrySale, EntryCorrection, EntryShortageReport:
		return true
	}
	return false
}

// Product represents a catalog product. Quantity and status are derived from
// the ledger; the catalog owns everything else.
type Product struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	ShelfLocation   string    `json:"shelf_location" db:"shelf_location"`
	Category        string    `json:"category" db:"category"`
	Price           float64   `json:"price" db:"price"`
	CurrentQuantity int       `json:"current_quantity" db:"current_quantity"`
	Status          Status    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// LedgerEntry is one immutable quantity movement for a product. Entries for a
// product form a total order by (Timestamp, Seq); NewQuantity is the absolute
// quantity after applying Change, and Change is the effective delta after
// clamping at zero, which may be smaller in magnitude than what was requested.
type LedgerEntry struct {
	ID          string    `json:"id" db:"id"`
	ProductID   string    `json:"product_id" db:"product_id"`
	Seq         int64     `json:"seq" db:"seq"`
	EntryType   EntryType `json:"entry_type" db:"entry_type"`
	Change      int       `json:"change" db:"change"`
	NewQuantity int       `json:"new_quantity" db:"new_quantity"`
	Timestamp   time.Time `json:"timestamp" db:"entry_ts"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ProductState is the cached derived view of a product's stock.
type ProductState struct {
	ProductID   string    `json:"product_id"`
	Quantity    int       `json:"quantity"`
	Status      Status    `json:"status"`
	LastSeq     int64     `json:"last_seq"`
	LastUpdated time.Time `json:"last_updated"`
}

// TimeRange bounds an analysis window. Zero values mean unbounded on that side.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether ts falls inside the range (inclusive From,
// exclusive To when set).
func (r TimeRange) Contains(ts time.Time) bool {
	if !r.From.IsZero() && ts.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !ts.Before(r.To) {
		return false
	}
	return true
}

// OutOfStockInterval is a period during which a product's status was
// out_of_stock. End and DurationHours are nil while the interval is open.
type OutOfStockInterval struct {
	ProductID     string     `json:"product_id"`
	Start         time.Time  `json:"start"`
	End           *time.Time `json:"end,omitempty"`
	DurationHours *float64   `json:"duration_hours,omitempty"`
}

// AbcClass is a Pareto class by sales contribution.
type AbcClass string

const (
	AbcClassA AbcClass = "A"
	AbcClassB AbcClass = "B"
	AbcClassC AbcClass = "C"
)

// AbcItem is one ranked, classified product in an ABC analysis.
type AbcItem struct {
	ProductID            string   `json:"product_id"`
	ProductName          string   `json:"product_name"`
	SalesVolume          int      `json:"sales_volume"`
	PercentageOfTotal    float64  `json:"percentage_of_total"`
	CumulativePercentage float64  `json:"cumulative_percentage"`
	Class                AbcClass `json:"class"`
}

// AbcAnalysisResult is the full output of an ABC analysis run.
type AbcAnalysisResult struct {
	Items       []AbcItem        `json:"items"`
	ClassCounts map[AbcClass]int `json:"class_counts"`
	ClassVolume map[AbcClass]int `json:"class_volume"`
	TotalVolume int              `json:"total_volume"`
	Window      TimeRange        `json:"window"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// XyzClass is a demand-stability class by coefficient of variation.
type XyzClass string

const (
	XyzClassX XyzClass = "X"
	XyzClassY XyzClass = "Y"
	XyzClassZ XyzClass = "Z"
)

// Confidence flags whether a computed result rests on enough history.
type Confidence string

const (
	ConfidenceNormal Confidence = "normal"
	ConfidenceLow    Confidence = "low"
)

// XyzItem is one classified product in an XYZ analysis.
type XyzItem struct {
	ProductID        string     `json:"product_id"`
	ProductName      string     `json:"product_name"`
	VariabilityScore float64    `json:"variability_score"`
	Class            XyzClass   `json:"class"`
	Confidence       Confidence `json:"confidence"`
}

// XyzAnalysisResult is the full output of an XYZ analysis run.
type XyzAnalysisResult struct {
	Items       []XyzItem        `json:"items"`
	ClassCounts map[XyzClass]int `json:"class_counts"`
	Window      TimeRange        `json:"window"`
	BucketHours int              `json:"bucket_hours"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// ForecastResult is a short-horizon demand forecast with retrospective
// accuracy metrics.
type ForecastResult struct {
	ProductID          string    `json:"product_id"`
	HorizonDays        int       `json:"horizon_days"`
	ForecastedQuantity int       `json:"forecasted_quantity"`
	MAPE               float64   `json:"mape"`
	MAE                float64   `json:"mae"`
	LowConfidence      bool      `json:"low_confidence"`
	GeneratedAt        time.Time `json:"generated_at"`
}
