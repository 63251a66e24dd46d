package payment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCartEncodingsAreEquivalent(t *testing.T) {
	tests := []struct {
		raw      string
		encoding CartEncoding
	}{
		{`{"7":{"quantity":2},"9":{"quantity":1}}`, CartEncodingObject},
		{`[7,7,9]`, CartEncodingArray},
		{`["7","7","9"]`, CartEncodingArray},
		{`7,7,9`, CartEncodingCSV},
		{` 7, 9 ,7 `, CartEncodingCSV},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			cart, err := ParseCart(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.encoding, cart.Encoding)
			assert.Equal(t, map[int64]int{7: 2, 9: 1}, cart.Quantities())
			assert.Equal(t, []int64{7, 9}, cart.ProductIDs())
			assert.Equal(t, 3, cart.TotalUnits())
			assert.ElementsMatch(t, []int64{7, 7, 9}, cart.Units())
		})
	}
}

func TestParseCartBareID(t *testing.T) {
	cart, err := ParseCart("5")
	require.NoError(t, err)
	assert.Equal(t, CartEncodingBareID, cart.Encoding)
	assert.Equal(t, []int64{5}, cart.Units())
}

func TestParseCartObjectOrdersNumerically(t *testing.T) {
	cart, err := ParseCart(`{"10":{"quantity":1},"9":{"quantity":3}}`)
	require.NoError(t, err)
	assert.Equal(t, []CartLine{{ProductID: 9, Quantity: 3}, {ProductID: 10, Quantity: 1}}, cart.Lines)
	assert.Equal(t, []int64{9, 9, 9, 10}, cart.Units())
}

func TestParseCartArrayKeepsFirstAppearance(t *testing.T) {
	cart, err := ParseCart(`[9,3,9]`)
	require.NoError(t, err)
	assert.Equal(t, []CartLine{{ProductID: 9, Quantity: 2}, {ProductID: 3, Quantity: 1}}, cart.Lines)
	assert.Equal(t, []int64{3, 9}, cart.ProductIDs())
}

func TestParseCartErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"blank", "   ", ErrEmptyCart},
		{"empty object", `{}`, ErrEmptyCart},
		{"empty array", `[]`, ErrEmptyCart},
		{"zero quantity", `{"7":{"quantity":0}}`, ErrMalformedCart},
		{"negative quantity", `{"7":{"quantity":-2}}`, ErrMalformedCart},
		{"missing quantity", `{"7":{}}`, ErrMalformedCart},
		{"non numeric key", `{"abc":{"quantity":1}}`, ErrMalformedCart},
		{"zero id in array", `[0,7]`, ErrMalformedCart},
		{"fractional id in array", `[7.5]`, ErrMalformedCart},
		{"nested array", `[[7]]`, ErrMalformedCart},
		{"garbage", `seven`, ErrMalformedCart},
		{"bad csv field", `7,x,9`, ErrMalformedCart},
		{"negative bare id", `-3`, ErrMalformedCart},
		{"broken json", `{"7":`, ErrMalformedCart},
		{"huge quantity", `{"5":{"quantity":4000000000000000000}}`, ErrMalformedCart},
		{"quantity beyond int64", `{"5":{"quantity":99999999999999999999}}`, ErrMalformedCart},
		{"quantity over limit", `{"5":{"quantity":1001}}`, ErrMalformedCart},
		{"lines over limit", `{"5":{"quantity":600},"6":{"quantity":401}}`, ErrMalformedCart},
		{"array over limit", "[" + strings.TrimSuffix(strings.Repeat("7,", MaxCartUnits+1), ",") + "]", ErrMalformedCart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCart(tt.raw)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEncodeCartRoundTrip(t *testing.T) {
	raw, err := EncodeCart(map[int64]int{7: 2, 9: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"7":{"quantity":2},"9":{"quantity":1}}`, raw)

	cart, err := ParseCart(raw)
	require.NoError(t, err)
	assert.Equal(t, CartEncodingObject, cart.Encoding)
	assert.Equal(t, map[int64]int{7: 2, 9: 1}, cart.Quantities())
}

func TestEncodeCartRejects(t *testing.T) {
	_, err := EncodeCart(nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = EncodeCart(map[int64]int{7: 0})
	assert.ErrorIs(t, err, ErrMalformedCart)

	_, err = EncodeCart(map[int64]int{7: MaxCartUnits + 1})
	assert.ErrorIs(t, err, ErrMalformedCart)
}

func TestParseCartAcceptsLimit(t *testing.T) {
	cart, err := ParseCart(`{"5":{"quantity":600},"6":{"quantity":400}}`)
	require.NoError(t, err)
	assert.Equal(t, MaxCartUnits, cart.TotalUnits())
	assert.Len(t, cart.Units(), MaxCartUnits)
}
