package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// csvColumns is the expected header of a stock import file.
var csvColumns = []string{"name", "reference", "quantity", "threshold", "unit_price"}

// ParseCSV reads a stock import file. The first row must be the header
// name,reference,quantity,threshold,unit_price; reference and unit_price
// may be empty. Any malformed row aborts the whole parse so a bad file
// never half-imports.
func ParseCSV(r io.Reader) ([]*StockItem, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvColumns)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range csvColumns {
		if strings.TrimSpace(strings.ToLower(header[i])) != col {
			return nil, fmt.Errorf("unexpected header column %d: got %q, want %q", i+1, header[i], col)
		}
	}

	var items []*StockItem
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		item, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func parseRecord(record []string) (*StockItem, error) {
	name := strings.TrimSpace(record[0])
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	item := &StockItem{Name: name}

	if ref := strings.TrimSpace(record[1]); ref != "" {
		item.Reference = &ref
	}

	qty, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil || qty < 0 {
		return nil, fmt.Errorf("invalid quantity %q", record[2])
	}
	item.Quantity = qty

	threshold, err := strconv.Atoi(strings.TrimSpace(record[3]))
	if err != nil || threshold < 0 {
		return nil, fmt.Errorf("invalid threshold %q", record[3])
	}
	item.Threshold = threshold

	if raw := strings.TrimSpace(record[4]); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price < 0 {
			return nil, fmt.Errorf("invalid unit_price %q", record[4])
		}
		item.UnitPrice = &price
	}
	return item, nil
}
