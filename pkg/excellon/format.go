// Package excellon parses legacy Excellon drill files into hole and slot
// records in absolute millimeters.
package excellon

import (
	"math"
	"strconv"
	"strings"
)

// Unit is the measurement system declared by the file header.
type Unit int

const (
	Metric Unit = iota
	Imperial
)

// MMPerInch converts imperial file values to millimeters.
const MMPerInch = 25.4

// ZeroSuppression names which zeros the file keeps in coordinate tokens.
// Excellon "LZ" means leading zeros are present and trailing zeros omitted;
// "TZ" is the reverse.
type ZeroSuppression int

const (
	LeadingZeroPresent ZeroSuppression = iota
	TrailingZeroPresent
)

// Format describes how bare coordinate tokens are reconstructed into numbers.
// It is refined as header directives are seen and frozen for the line being
// decoded.
type Format struct {
	IntegerDigits int
	DecimalDigits int
	Zeros         ZeroSuppression
	Unit          Unit
}

// DefaultFormat matches the common 4:4 metric leading-zero convention used
// when a file declares nothing.
func DefaultFormat() Format {
	return Format{
		IntegerDigits: 4,
		DecimalDigits: 4,
		Zeros:         LeadingZeroPresent,
		Unit:          Metric,
	}
}

// DecodeCoordinate turns a raw coordinate token into a value in the file's
// native unit. Tokens with an explicit decimal point are parsed directly;
// otherwise the integer and decimal parts are reconstructed from the format's
// digit counts. A malformed token decodes to 0.0 rather than failing, so one
// bad field never aborts the file.
func DecodeCoordinate(token string, f Format) float64 {
	if strings.Contains(token, ".") {
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return 0
		}
		return v
	}

	sign := 1.0
	if strings.HasPrefix(token, "+") {
		token = token[1:]
	} else if strings.HasPrefix(token, "-") {
		sign = -1
		token = token[1:]
	}
	if token == "" {
		return 0
	}

	var integerPart, decimalPart string
	if f.Zeros == LeadingZeroPresent {
		if len(token) <= f.IntegerDigits {
			integerPart = token
			decimalPart = ""
		} else {
			integerPart = token[:f.IntegerDigits]
			decimalPart = token[f.IntegerDigits:]
		}
		for len(decimalPart) < f.DecimalDigits {
			decimalPart += "0"
		}
	} else {
		if len(token) <= f.DecimalDigits {
			integerPart = "0"
			decimalPart = strings.Repeat("0", f.DecimalDigits-len(token)) + token
		} else {
			integerPart = token[:len(token)-f.DecimalDigits]
			decimalPart = token[len(token)-f.DecimalDigits:]
		}
	}

	intValue, err := strconv.Atoi(integerPart)
	if err != nil {
		return 0
	}
	decValue := 0
	if decimalPart != "" {
		decValue, err = strconv.Atoi(decimalPart)
		if err != nil {
			return 0
		}
	}
	return sign * (float64(intValue) + float64(decValue)/math.Pow10(f.DecimalDigits))
}
