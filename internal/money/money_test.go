package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_String(t *testing.T) {
	assert.Equal(t, "₦0", Amount(0).String())
	assert.Equal(t, "₦500", Amount(500).String())
	assert.Equal(t, "₦5,800", Amount(5800).String())
	assert.Equal(t, "₦1,234,567", Amount(1234567).String())
	assert.Equal(t, "-₦2,500", Amount(-2500).String())
}

func TestAmount_MulAndSum(t *testing.T) {
	assert.Equal(t, Amount(5000), Amount(2500).Mul(2))
	assert.Equal(t, Amount(5800), Sum(Amount(2500).Mul(2), Amount(800)))
	assert.Equal(t, Amount(0), Sum())
}

func TestAmount_MulChecked(t *testing.T) {
	got, err := Amount(2500).MulChecked(99)
	require.NoError(t, err)
	assert.Equal(t, Amount(247500), got)

	_, err = Amount(2500).MulChecked(4000000000000000)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = MaxAmount.MulChecked(1 << 10)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Amount(2500).MulChecked(-1)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestAddChecked(t *testing.T) {
	got, err := AddChecked(2500, 800, 500)
	require.NoError(t, err)
	assert.Equal(t, Amount(3800), got)

	_, err = AddChecked(Amount(math.MaxInt64-10), 500)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = AddChecked(500, -1)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Amount
		err  error
	}{
		{in: "2500", want: 2500},
		{in: " 2500.00 ", want: 2500},
		{in: "₦2,500", want: 2500},
		{in: "0", want: 0},
		{in: "2500.50", err: ErrFractional},
		{in: "-1", err: ErrNegativeAmount},
		{in: "", err: ErrInvalidAmount},
		{in: "abc", err: ErrInvalidAmount},
		{in: "9007199254740993", err: ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
