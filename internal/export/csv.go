// Package export renders the audit trail as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/stocktrack/inventory-service/internal/store"
)

var header = []string{"Time", "Code", "Name", "Manufacturer", "Supplier", "Price", "Change"}

// Write renders rows with the fixed column order Time, Code, Name,
// Manufacturer, Supplier, Price, Change. Prices are formatted with two
// decimals, empty when unset.
func Write(w io.Writer, rows []store.AuditRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		price := ""
		if r.Price != nil {
			price = r.Price.StringFixed(2)
		}
		rec := []string{
			r.Time.UTC().Format(time.RFC3339),
			r.Code,
			r.Name,
			r.Manufacturer,
			r.Supplier,
			price,
			strconv.Itoa(r.Change),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// MonthWindow turns "YYYY-MM" into the inclusive bounds of that calendar
// month.
func MonthWindow(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: %w", month, err)
	}
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end, nil
}
