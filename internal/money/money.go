package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a count of whole naira. Menu prices never carry kobo, so integer
// arithmetic keeps every total exact.
type Amount int64

// MaxAmount is the largest price Parse accepts.
const MaxAmount Amount = 1 << 53

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrFractional     = errors.New("amount must be a whole number of naira")
	ErrOverflow       = errors.New("amount overflows")
)

// Mul returns the amount multiplied by a quantity. It does not check for
// overflow; totals that are stored go through MulChecked.
func (a Amount) Mul(qty int) Amount {
	return a * Amount(qty)
}

// MulChecked is Mul for non-negative operands, failing with ErrOverflow
// instead of wrapping.
func (a Amount) MulChecked(qty int) (Amount, error) {
	if a < 0 || qty < 0 {
		return 0, ErrNegativeAmount
	}
	if qty != 0 && int64(a) > math.MaxInt64/int64(qty) {
		return 0, fmt.Errorf("%w: %d x %d", ErrOverflow, int64(a), qty)
	}
	return a * Amount(qty), nil
}

// AddChecked adds non-negative amounts, failing with ErrOverflow instead of
// wrapping.
func AddChecked(amounts ...Amount) (Amount, error) {
	var total Amount
	for _, a := range amounts {
		if a < 0 {
			return 0, ErrNegativeAmount
		}
		if total > math.MaxInt64-a {
			return 0, ErrOverflow
		}
		total += a
	}
	return total, nil
}

// Sum adds amounts together.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

// String formats the amount the way the menu shows it, e.g. ₦5,800.
func (a Amount) String() string {
	n := int64(a)
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + "₦" + b.String()
}

// Parse reads a price typed by staff ("2500", "2500.00", "₦2,500").
func Parse(s string) (Amount, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "₦")
	clean = strings.ReplaceAll(clean, ",", "")
	if clean == "" {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, ErrNegativeAmount
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, ErrFractional
	}
	if !d.LessThanOrEqual(decimal.NewFromInt(int64(MaxAmount))) {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidAmount, s)
	}
	return Amount(d.IntPart()), nil
}
