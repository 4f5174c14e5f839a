package fnbound

import (
	"errors"
	"strconv"
	"strings"
)

var errEmptyNumber = errors.New("empty token")

// ParseInt parses a length or other signed integer field. It accepts an
// optional "$" prefix followed by "0x<hex>", "-0x<hex>" or a plain decimal.
func ParseInt(s string) (int64, error) {
	return parseNumber(s, 10)
}

// ParseAddress parses an address field. Prefixes are handled as in ParseInt,
// but a bare token is read as hexadecimal. Negative addresses are rejected.
func ParseAddress(s string) (uint64, error) {
	n, err := parseNumber(s, 16)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, &NumberError{Token: s, Err: errors.New("negative address")}
	}
	return uint64(n), nil
}

// parseNumber is the single number parser behind every table field. bareBase
// applies to tokens without a 0x prefix.
func parseNumber(s string, bareBase int) (int64, error) {
	tok := strings.TrimPrefix(s, "$")
	if tok == "" {
		return 0, &NumberError{Token: s, Err: errEmptyNumber}
	}

	var (
		n   int64
		err error
	)
	switch {
	case strings.HasPrefix(tok, "0x"), strings.HasPrefix(tok, "0X"):
		n, err = parseHexDigits(tok[2:])
	case strings.HasPrefix(tok, "-0x"), strings.HasPrefix(tok, "-0X"):
		n, err = parseHexDigits(tok[3:])
		n = -n
	default:
		n, err = strconv.ParseInt(tok, bareBase, 64)
	}
	if err != nil {
		return 0, &NumberError{Token: s, Err: err}
	}
	return n, nil
}

var errSignAfterPrefix = errors.New("sign after 0x prefix")

// parseHexDigits parses the digits following a 0x prefix, which carry no sign
// of their own.
func parseHexDigits(digits string) (int64, error) {
	if strings.HasPrefix(digits, "+") || strings.HasPrefix(digits, "-") {
		return 0, errSignAfterPrefix
	}
	return strconv.ParseInt(digits, 16, 64)
}
