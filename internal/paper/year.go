package paper

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// UnknownYear is stored when no publication year is known.
const UnknownYear Year = "unknown"

// Year is a publication year as entered by the user. It is not validated as
// an integer: citation text sometimes carries "in press" or "2023a".
type Year string

// IsNumeric reports whether the year consists only of ASCII digits.
func (y Year) IsNumeric() bool {
	if y == "" {
		return false
	}
	for _, r := range y {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Known reports whether the year carries a real value.
func (y Year) Known() bool {
	return y != "" && y != UnknownYear
}

func (y Year) String() string {
	return string(y)
}

// MarshalJSON writes numeric years as JSON numbers and everything else as
// strings, so that downstream tools can sort by year numerically.
func (y Year) MarshalJSON() ([]byte, error) {
	if y.IsNumeric() {
		if n, err := strconv.Atoi(string(y)); err == nil && strconv.Itoa(n) == string(y) {
			return []byte(string(y)), nil
		}
	}
	return json.Marshal(string(y))
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (y *Year) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*y = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*y = Year(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*y = Year(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into Year", string(data))
}
