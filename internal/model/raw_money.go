package model

import (
	"bytes"
	"errors"
	"strings"
)

var errRawMoneyType = errors.New("amount must be a number or a numeric string")

// RawMoney captures an amount exactly as the client sent it, either as a JSON
// number or as a string. Parsing is deferred to money.Parse so that callers can
// report InvalidFeeFormat themselves.
type RawMoney string

func (r *RawMoney) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = ""
	case len(data) > 0 && data[0] == '"':
		*r = RawMoney(strings.Trim(string(data), `"`))
	case len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')):
		*r = RawMoney(data)
	default:
		return errRawMoneyType
	}
	return nil
}

func (r RawMoney) String() string {
	return string(r)
}
