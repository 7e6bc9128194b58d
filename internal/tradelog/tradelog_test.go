package tradelog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, ref, &rows[i]))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestParseSelection_Valid(t *testing.T) {
	got, err := ParseSelection("1, 3", 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, got)

	got, err = ParseSelection("2", 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)
}

func TestParseSelection_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"below range", "0"},
		{"above range", "4"},
		{"repeated", "1, 1"},
		{"not a number", "abc"},
		{"empty item", "1,,2"},
		{"empty input", "   "},
		{"trailing comma", "1,"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSelection(tt.input, 3)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSelection))
		})
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	names := []string{"old.xlsx", "mid.XLSX", "new.xlsx"}
	for i, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		mt := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(path, mt, mt))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "~$new.xlsx"), []byte("lock"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	files, err := Discover(dir, 2)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "new.xlsx", files[0].Name)
	assert.Equal(t, "mid.XLSX", files[1].Name)
}

func TestDiscover_Empty(t *testing.T) {
	_, err := Discover(t.TempDir(), 5)
	assert.ErrorIs(t, err, ErrNoFiles)

	_, err = Discover(filepath.Join(t.TempDir(), "missing"), 5)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestParseExpiration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"S60", 60},
		{"s300", 300},
		{"s0", 0},
		{"М5", 5},
		{"120", 120},
	}
	for _, tt := range tests {
		got, err := ParseExpiration(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseExpiration("S")
	assert.Error(t, err)
	_, err = ParseExpiration("")
	assert.Error(t, err)
}

func TestParseOpenTime(t *testing.T) {
	want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	for _, in := range []string{"2024-01-01 10:00", "2024-01-01 10:00:00", "01.01.2024 10:00", "45292.416666667"} {
		got, err := ParseOpenTime(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}

	_, err := ParseOpenTime("yesterday")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount(" 12,5 ")
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	v, err = ParseAmount("-1 000.25")
	require.NoError(t, err)
	assert.Equal(t, -1000.25, v)
}

func TestReadWorkbook_MessyHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messy.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"  Актив ", " Время открытия", "Прибыль  ", " Экспирация ", "Валюта", "Размер сделки"},
		{"EUR/USD OTC", "2024-01-01 10:00", 8.5, "S60", "USD", 10},
		{"", "", "", "", "", ""},
		{"GBP/JPY", time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC), -10, "S300", "USD", 10},
	})

	trades, err := ReadWorkbook(path)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, "EUR/USD OTC", trades[0].Asset)
	assert.Equal(t, 8.5, trades[0].Profit)
	assert.Equal(t, 60, trades[0].ExpirationSec)
	assert.Equal(t, 10.0, trades[0].Stake)
	assert.Equal(t, "messy.xlsx", trades[0].Source)

	assert.Equal(t, -10.0, trades[1].Profit)
	assert.Equal(t, 300, trades[1].ExpirationSec)
	assert.True(t, time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC).Equal(trades[1].OpenTime))
}

func TestReadWorkbook_EnglishHeadersAndOptionalColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"Asset", "Open time", "Profit"},
		{"AUD/USD", "2024-03-05 14:00:00", 0},
	})

	trades, err := ReadWorkbook(path)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "", trades[0].Currency)
	assert.Equal(t, 0, trades[0].ExpirationSec)
}

func TestReadWorkbook_MissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"Актив", "Прибыль"},
		{"EUR/USD", 1},
	})

	_, err := ReadWorkbook(path)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoader_LoadKeepsFileOrder(t *testing.T) {
	dir := t.TempDir()
	header := []interface{}{"Актив", "Время открытия", "Прибыль", "Экспирация", "Валюта"}
	first := filepath.Join(dir, "a.xlsx")
	second := filepath.Join(dir, "b.xlsx")
	writeWorkbook(t, first, [][]interface{}{
		header,
		{"A1", "2024-01-01 10:00", 1, "S60", "USD"},
		{"A2", "2024-01-01 11:00", -1, "S60", "USD"},
	})
	writeWorkbook(t, second, [][]interface{}{
		header,
		{"B1", "2024-01-02 10:00", 2, "S60", "EUR"},
	})

	loader := NewLoader(4, nil)
	var calls atomic.Int32
	loader.SetProgressCallback(func(loaded, total int) {
		calls.Add(1)
	})

	trades, err := loader.Load(context.Background(), []string{second, first})
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.Equal(t, "B1", trades[0].Asset)
	assert.Equal(t, "A1", trades[1].Asset)
	assert.Equal(t, "A2", trades[2].Asset)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLoader_ProgressIsSequential(t *testing.T) {
	dir := t.TempDir()
	header := []interface{}{"Актив", "Время открытия", "Прибыль", "Экспирация", "Валюта"}
	var paths []string
	for i := 0; i < 8; i++ {
		path := filepath.Join(dir, fmt.Sprintf("f%d.xlsx", i))
		writeWorkbook(t, path, [][]interface{}{
			header,
			{"A", "2024-01-01 10:00", 1, "S60", "USD"},
		})
		paths = append(paths, path)
	}

	loader := NewLoader(4, nil)
	var seen []int
	loader.SetProgressCallback(func(loaded, total int) {
		assert.Equal(t, len(paths), total)
		seen = append(seen, loaded)
	})

	_, err := loader.Load(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, seen)
}

func TestLoader_PropagatesErrors(t *testing.T) {
	loader := NewLoader(2, nil)
	_, err := loader.Load(context.Background(), []string{filepath.Join(t.TempDir(), "missing.xlsx")})
	assert.Error(t, err)
}
