package trace

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrUnknownSizeUnit is returned for size strings without a known unit.
var ErrUnknownSizeUnit = errors.New("unknown size unit")

var sizeUnits = map[string]uint64{
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
}

// ParseSize converts size strings such as "16KB" or "4 MB" into a number of
// bytes. Units are case-insensitive.
func ParseSize(s string) (uint64, error) {
	s = strings.TrimSpace(s)

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r)
	})
	if split < 0 {
		return 0, fmt.Errorf("%w in %q", ErrUnknownSizeUnit, s)
	}

	numberStr := s[:split]
	unitStr := strings.ToUpper(strings.TrimSpace(s[split:]))

	multiplier, ok := sizeUnits[unitStr]
	if !ok {
		return 0, fmt.Errorf("%w in %q", ErrUnknownSizeUnit, s)
	}

	number, err := strconv.ParseUint(numberStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing size %q: %w", s, err)
	}

	if number > (^uint64(0))/multiplier {
		return 0, fmt.Errorf("size %q overflows", s)
	}

	return number * multiplier, nil
}
