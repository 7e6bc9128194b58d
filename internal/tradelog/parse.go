package tradelog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
)

type column int

const (
	colAsset column = iota
	colOpenTime
	colProfit
	colExpiration
	colCurrency
	colStake
)

// headerAliases maps normalized header text to a column. Pocket Option exports
// use Russian headers; English names cover the localized export.
var headerAliases = map[string]column{
	"актив":          colAsset,
	"asset":          colAsset,
	"время открытия": colOpenTime,
	"open time":      colOpenTime,
	"opening time":   colOpenTime,
	"прибыль":        colProfit,
	"profit":         colProfit,
	"экспирация":     colExpiration,
	"expiration":     colExpiration,
	"валюта":         colCurrency,
	"currency":       colCurrency,
	"размер сделки":  colStake,
	"trade size":     colStake,
	"amount":         colStake,
	"stake":          colStake,
}

var requiredColumns = map[column]string{
	colAsset:    "Актив",
	colOpenTime: "Время открытия",
	colProfit:   "Прибыль",
}

// NormalizeHeader trims the whitespace broken exports leave around header names
// and lowercases the result.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// mapHeader returns column positions for a header row
func mapHeader(header []string) (map[column]int, error) {
	positions := make(map[column]int)
	for i, h := range header {
		if c, ok := headerAliases[NormalizeHeader(h)]; ok {
			if _, dup := positions[c]; !dup {
				positions[c] = i
			}
		}
	}
	for c, name := range requiredColumns {
		if _, ok := positions[c]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	return positions, nil
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"2006-01-02",
	"02.01.2006",
}

// ParseOpenTime parses an open time cell: a text timestamp in one of the export
// layouts or an Excel date serial number.
func ParseOpenTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		// serials carry float noise; round to the second
		return t.Round(time.Second), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", v)
}

// ParseAmount parses a money cell, accepting a comma decimal separator
func ParseAmount(v string) (float64, error) {
	v = strings.ReplaceAll(strings.TrimSpace(v), " ", "")
	v = strings.ReplaceAll(v, ",", ".")
	if v == "" {
		return 0, fmt.Errorf("empty amount")
	}
	return strconv.ParseFloat(v, 64)
}

// ParseExpiration converts an export expiration like "S60" into seconds by
// dropping the unit prefix. Plain digits are accepted as seconds.
func ParseExpiration(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, fmt.Errorf("empty expiration")
	}
	digits := strings.TrimLeftFunc(v, func(r rune) bool { return !unicode.IsDigit(r) })
	secs, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid expiration %q", v)
	}
	return secs, nil
}

func cell(row []string, positions map[column]int, c column) string {
	i, ok := positions[c]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
