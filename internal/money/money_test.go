package money

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Separators(t *testing.T) {
	tests := []struct {
		in   string
		want Cents
	}{
		{"1,50", 150},
		{" 0,5 ", 50},
		{"2.00", 200},
		{"1", 100},
		{"12", 1200},
		{"5,00", 500},
		{"0,01", 1},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_RoundsHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   string
		want Cents
	}{
		{"1,234", 123},
		{"1,235", 124},
		{"1,005", 101},
		{"1,004", 100},
		{"0,005", 1},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParse_IgnoresWhitespaceEverywhere(t *testing.T) {
	got, err := Parse("  2 , 5  ")
	require.NoError(t, err)
	assert.Equal(t, Cents(250), got)

	got, err = Parse("\t1\n0 0")
	require.NoError(t, err)
	assert.Equal(t, Cents(10000), got)
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "-2", "0", "0,00", "0,004", "1,2.3", "1,2,3", "Infinity", "NaN", "99999999999999999999"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "10.00", Format(1000))
	assert.Equal(t, "0.05", Format(5))
	assert.Equal(t, "1.50", Format(150))
	assert.Equal(t, "0.00", Format(0))
	assert.Equal(t, "-2.30", Format(-230))
	assert.Equal(t, "12.34", Cents(1234).String())
}

func TestParse_FormatRoundTrip(t *testing.T) {
	for _, c := range []Cents{1, 9, 10, 99, 100, 123, 1000, 123456789} {
		got, err := Parse(Format(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestFromUnits(t *testing.T) {
	assert.Equal(t, Cents(2000), FromUnits(20))
}

func TestParse_RejectsExponentsQuickly(t *testing.T) {
	for _, in := range []string{"1e9999999", "1e400", "1E2", "1e-9999999", "5,0e1", "0." + strings.Repeat("0", 4096) + "1"} {
		start := time.Now()
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %.20q", in)
		assert.Less(t, time.Since(start), 50*time.Millisecond, "input %.20q", in)
	}
}
