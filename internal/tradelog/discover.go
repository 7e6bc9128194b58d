package tradelog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNoFiles is returned when the trades directory holds no workbooks
	ErrNoFiles = errors.New("no xlsx files in trades directory")
	// ErrInvalidSelection wraps every file selection parse failure
	ErrInvalidSelection = errors.New("invalid file selection")
)

// FileInfo describes a discovered export
type FileInfo struct {
	Path    string
	Name    string
	ModTime time.Time
}

// Discover lists *.xlsx exports in dir, newest first, at most limit entries.
// Office lock files (~$name.xlsx) are skipped.
func Discover(dir string, limit int) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNoFiles, dir)
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var files []FileInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".xlsx") || strings.HasPrefix(name, "~$") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, name),
			Name:    name,
			ModTime: info.ModTime(),
		})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, dir)
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Name < files[j].Name
	})

	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

// ParseSelection turns "1" or "1, 3" into zero-based indices into a list of n files.
func ParseSelection(input string, n int) ([]int, error) {
	input = strings.ReplaceAll(strings.TrimSpace(input), " ", "")
	if input == "" {
		return nil, fmt.Errorf("%w: input is empty", ErrInvalidSelection)
	}

	var indices []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(input, ",") {
		if part == "" {
			return nil, fmt.Errorf("%w: malformed list", ErrInvalidSelection)
		}
		idx, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidSelection, part)
		}
		if idx < 1 || idx > n {
			return nil, fmt.Errorf("%w: number %d is outside 1-%d", ErrInvalidSelection, idx, n)
		}
		if seen[idx] {
			return nil, fmt.Errorf("%w: number %d is repeated", ErrInvalidSelection, idx)
		}
		seen[idx] = true
		indices = append(indices, idx-1)
	}
	return indices, nil
}
