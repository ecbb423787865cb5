package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// MinorUnits is an amount exactly as it appeared in a JSON body. The literal
// is kept as text so integers beyond float64 precision reach the processor
// unchanged.
type MinorUnits string

var errAmountNotNumber = &ValidationError{Field: "amount", Reason: "must be a number"}

func (m *MinorUnits) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*m = ""
		return nil
	}
	if len(b) == 0 || b[0] == '"' {
		return errAmountNotNumber
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errAmountNotNumber
	}
	*m = MinorUnits(n)
	return nil
}

// Int64 returns the exact integer value. It reports false when the literal
// is fractional, uses an exponent, or does not fit in an int64. A zero
// fraction such as "2500.00" is accepted.
func (m MinorUnits) Int64() (int64, bool) {
	s := string(m)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		if strings.Trim(s[i+1:], "0") != "" {
			return 0, false
		}
		s = s[:i]
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
