package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "integer", in: "1000", want: "1000.00"},
		{name: "padded", in: "  12.5 ", want: "12.50"},
		{name: "rounds half up", in: "10.005", want: "10.01"},
		{name: "zero", in: "0", want: "0.00"},
		{name: "empty", in: "", wantErr: ErrInvalidFeeFormat},
		{name: "letters", in: "ten", wantErr: ErrInvalidFeeFormat},
		{name: "trailing junk", in: "12abc", wantErr: ErrInvalidFeeFormat},
		{name: "negative", in: "-1", wantErr: ErrNegativeAmount},
		{name: "column maximum", in: "9999999999.99", want: "9999999999.99"},
		{name: "scientific", in: "1.2e3", want: "1200.00"},
		{name: "above column maximum", in: "10000000000", wantErr: ErrAmountTooLarge},
		{name: "rounds above maximum", in: "9999999999.999", wantErr: ErrAmountTooLarge},
		{name: "exponent at limit", in: "1e10", wantErr: ErrAmountTooLarge},
		{name: "huge exponent", in: "1e10000000", wantErr: ErrInvalidFeeFormat},
		{name: "tiny exponent", in: "1e-10000000", wantErr: ErrInvalidFeeFormat},
		{name: "overlong", in: "0.000000000000000000000000000000001", wantErr: ErrInvalidFeeFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestMoneyJSON(t *testing.T) {
	var payload struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 1200, "b": "99.9"}`), &payload))
	assert.Equal(t, "1200.00", payload.A.String())
	assert.Equal(t, "99.90", payload.B.String())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1200.00, "b": 99.90}`, string(out))

	err = json.Unmarshal([]byte(`{"a": "abc"}`), &payload)
	assert.ErrorIs(t, err, ErrInvalidFeeFormat)
}

func TestAddKeepsExactCents(t *testing.T) {
	total := Zero
	for i := 0; i < 10; i++ {
		total = total.Add(MustParse("0.10"))
	}
	assert.True(t, total.Equal(MustParse("1.00")))
}
