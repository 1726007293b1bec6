package repository

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Monetary columns are NUMERIC(10,2); values cross the wire as text so
// no precision is lost in either direction.

func decimalToText(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func textToDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse numeric column %q: %w", *s, err)
	}
	return &d, nil
}
