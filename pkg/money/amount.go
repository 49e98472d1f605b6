package money

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a fixed-point monetary value. Amounts enter the system as the
// decimal strings reported by the commerce platform and stay decimal end to
// end; float64 appears only at the rendering boundary.
type Amount struct {
	d decimal.Decimal
}

func Zero() Amount {
	return Amount{}
}

// Parse validates a decimal string from the platform boundary.
func Parse(raw string) (Amount, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Amount{}, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return Amount{d: d}, nil
}

// MustParse is for configuration constants and tests.
func MustParse(raw string) Amount {
	a, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return a
}

func FromDecimal(d decimal.Decimal) Amount {
	return Amount{d: d}
}

func (a Amount) Decimal() decimal.Decimal {
	return a.d
}

func (a Amount) Add(other Amount) Amount {
	return Amount{d: a.d.Add(other.d)}
}

func (a Amount) Sub(other Amount) Amount {
	return Amount{d: a.d.Sub(other.d)}
}

func (a Amount) Cmp(other Amount) int {
	return a.d.Cmp(other.d)
}

func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

// String renders the canonical two-decimal form used across API responses.
func (a Amount) String() string {
	return a.d.StringFixed(2)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
