package kernel

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrQuantityIsNotConstructed = errors.New("Quantity must be created via NewQuantity or ParseQuantity")

var quantityPattern = regexp.MustCompile(`^\s*(\d+(?:[.,]\d+)?)\s*([a-zA-Z]*)\s*$`)

// Unit spellings accepted on input, mapped to their canonical form.
var unitAliases = map[string]string{
	"kg":     UnitKilogram,
	"kgs":    UnitKilogram,
	"kilo":   UnitKilogram,
	"g":      UnitGram,
	"gr":     UnitGram,
	"gram":   UnitGram,
	"grams":  UnitGram,
	"pcs":    UnitPiece,
	"pc":     UnitPiece,
	"piece":  UnitPiece,
	"pieces": UnitPiece,
	"":       UnitPiece,
}

const (
	UnitKilogram = "kg"
	UnitGram     = "g"
	UnitPiece    = "pcs"
)

// Quantity is an amount with a unit, as requested by a customer or fulfilled by a tenant
// ("1.5kg", "500g", "3pcs"). It is immutable and marshals to its string form.
type Quantity struct {
	amount float64
	unit   string

	guard guard.ConstructorGuard
}

// NewQuantity builds a quantity from a non-negative amount and a known unit.
func NewQuantity(amount float64, unit string) (Quantity, error) {
	canonical, ok := unitAliases[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return Quantity{}, errs.NewValueIsInvalidErrorWithCause("quantity unit", fmt.Errorf("%q is not a known unit", unit))
	}
	if amount < 0 {
		return Quantity{}, errs.NewValueIsInvalidErrorWithCause("quantity amount", fmt.Errorf("%v is negative", amount))
	}
	return Quantity{amount: amount, unit: canonical, guard: guard.NewConstructorGuard()}, nil
}

// ParseQuantity reads forms like "1.5kg", "1,5 kg", "500g" or "3". A missing unit means pieces.
func ParseQuantity(s string) (Quantity, error) {
	m := quantityPattern.FindStringSubmatch(s)
	if m == nil {
		return Quantity{}, errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%q is not a quantity", s))
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return Quantity{}, errs.NewValueIsInvalidErrorWithCause("quantity", err)
	}
	return NewQuantity(amount, m[2])
}

func (q Quantity) Validate() error {
	return q.guard.Validate(ErrQuantityIsNotConstructed)
}

func (q Quantity) Amount() float64 {
	return q.amount
}

func (q Quantity) Unit() string {
	return q.unit
}

// BillableAmount is the factor revenue is computed from: kilograms for weights,
// the count for pieces.
func (q Quantity) BillableAmount() float64 {
	if q.unit == UnitGram {
		return q.amount / 1000
	}
	return q.amount
}

func (q Quantity) IsZero() bool {
	return q.Validate() != nil
}

func (q Quantity) String() string {
	if q.IsZero() {
		return ""
	}
	return strconv.FormatFloat(q.amount, 'f', -1, 64) + q.unit
}

func (q Quantity) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

func (q *Quantity) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*q = Quantity{}
		return nil
	}
	parsed, err := ParseQuantity(string(data))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
