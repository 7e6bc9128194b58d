// Package prompt implements the interactive console dialogs of an analyze run.
// Every question is re-asked until the answer is valid; only a closed input
// stream ends a dialog with an error.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"winrate/internal/filter"
	"winrate/internal/tradelog"
	"winrate/pkg/model"
)

// ErrInputClosed is returned when the input ends before a valid answer
var ErrInputClosed = errors.New("input closed")

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	errColor   = color.New(color.FgRed)
	okColor    = color.New(color.FgGreen)
	hintColor  = color.New(color.FgYellow)
)

// Prompter asks questions on out and reads answers line by line from in
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a prompter
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// ask prints question and returns the trimmed answer
func (p *Prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) fail(format string, args ...interface{}) {
	errColor.Fprintf(p.out, "❌ "+format+"\n", args...)
}

// SelectFiles lists files and returns the zero-based indices the user picked
func (p *Prompter) SelectFiles(files []tradelog.FileInfo) ([]int, error) {
	titleColor.Fprintln(p.out, "\nAvailable trade files:")
	for i, f := range files {
		fmt.Fprintf(p.out, "  %d. %s  (%s)\n", i+1, f.Name, f.ModTime.Format("2006-01-02 15:04"))
	}
	hintColor.Fprintln(p.out, "Enter one number or several separated by commas, e.g. 1, 3")

	for {
		answer, err := p.ask("Files: ")
		if err != nil {
			return nil, err
		}
		indices, err := tradelog.ParseSelection(answer, len(files))
		if err != nil {
			p.fail("%v", err)
			continue
		}
		return indices, nil
	}
}

// OTCMode asks which assets to analyse
func (p *Prompter) OTCMode() (filter.OTCMode, error) {
	titleColor.Fprintln(p.out, "\nWhich assets should be analysed?")
	fmt.Fprintln(p.out, "  1. Only OTC")
	fmt.Fprintln(p.out, "  2. Only non-OTC")
	fmt.Fprintln(p.out, "  3. All assets")

	for {
		answer, err := p.ask("Choice (1-3): ")
		if err != nil {
			return 0, err
		}
		mode, err := filter.ParseOTCMode(answer)
		if err != nil {
			p.fail("enter 1, 2 or 3")
			continue
		}
		return mode, nil
	}
}

// Balance asks for the current account balance; a comma is accepted as the
// decimal separator.
func (p *Prompter) Balance(currency string) (float64, error) {
	for {
		answer, err := p.ask(fmt.Sprintf("\nCurrent balance (%s): ", currency))
		if err != nil {
			return 0, err
		}
		v, err := ParseBalance(answer)
		if err != nil {
			p.fail("%v", err)
			continue
		}
		return v, nil
	}
}

// ParseBalance parses a positive amount such as "1 500,50"
func ParseBalance(s string) (float64, error) {
	v, err := tradelog.ParseAmount(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("balance must be greater than zero")
	}
	return v, nil
}

// Expiration shows the available expirations and filters trades by the chosen
// one. Empty input, "0" or "all" keep every trade. A choice that leaves no
// trades is re-asked.
func (p *Prompter) Expiration(trades []model.Trade) ([]model.Trade, int, error) {
	counts := make(map[int]int)
	for _, t := range trades {
		counts[t.ExpirationSec]++
	}
	secs := make([]int, 0, len(counts))
	for s := range counts {
		secs = append(secs, s)
	}
	sort.Ints(secs)

	titleColor.Fprintln(p.out, "\nExpirations in the selected trades:")
	for _, s := range secs {
		fmt.Fprintf(p.out, "  %6ds  %d trades\n", s, counts[s])
	}

	for {
		answer, err := p.ask("Expiration in seconds (Enter for all): ")
		if err != nil {
			return nil, 0, err
		}
		seconds := 0
		if answer != "" && !strings.EqualFold(answer, "all") {
			seconds, err = strconv.Atoi(answer)
			if err != nil || seconds < 0 {
				p.fail("%q is not a number of seconds", answer)
				continue
			}
		}

		filtered := filter.Expiration(trades, seconds)
		if len(filtered) == 0 {
			p.fail("no trades with expiration %ds", seconds)
			continue
		}
		return filtered, seconds, nil
	}
}

// TargetCurrency shows the trades' currencies as a numbered menu and returns
// the chosen one. A listed code is accepted as well as its number; Enter picks
// the first.
func (p *Prompter) TargetCurrency(currencies []string) (string, error) {
	titleColor.Fprintln(p.out, "\nThe trades use several currencies. Convert everything to:")
	for i, c := range currencies {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, c)
	}

	for {
		answer, err := p.ask(fmt.Sprintf("Currency (1-%d, Enter for %s): ", len(currencies), currencies[0]))
		if err != nil {
			return "", err
		}
		if answer == "" {
			return currencies[0], nil
		}
		if n, err := strconv.Atoi(answer); err == nil {
			if n >= 1 && n <= len(currencies) {
				return currencies[n-1], nil
			}
			p.fail("enter a number from 1 to %d", len(currencies))
			continue
		}
		code := strings.ToUpper(answer)
		if slices.Contains(currencies, code) {
			return code, nil
		}
		p.fail("%q is not one of %s", answer, strings.Join(currencies, ", "))
	}
}

// ConfirmRate shows a fetched rate and reports whether the user accepted it
// with Enter. Anything else means the rate will be entered manually.
func (p *Prompter) ConfirmRate(description string) (bool, error) {
	okColor.Fprintf(p.out, "Rate: %s\n", description)
	answer, err := p.ask("Press Enter to accept or type anything to enter it manually: ")
	if err != nil {
		return false, err
	}
	return answer == "", nil
}

// ManualRate asks how many units of c one unit of target buys
func (p *Prompter) ManualRate(target, c string) (float64, error) {
	for {
		answer, err := p.ask(fmt.Sprintf("How many %s is 1 %s: ", c, target))
		if err != nil {
			return 0, err
		}
		v, err := tradelog.ParseAmount(answer)
		if err != nil || v <= 0 {
			p.fail("enter a positive number")
			continue
		}
		return v, nil
	}
}

// Period optionally narrows trades to a date range. Bounds are parsed
// day-first relative to the latest trade; empty bounds stay open. The user
// confirms the result and may start over.
func (p *Prompter) Period(trades []model.Trade) ([]model.Trade, *time.Time, *time.Time, error) {
	answer, err := p.ask("\nFilter by period? (y/N): ")
	if err != nil {
		return nil, nil, nil, err
	}
	if !isYes(answer) {
		return trades, nil, nil, nil
	}

	ref := latest(trades)
	hintColor.Fprintln(p.out, "Formats: 31.12.2024, 31.12.2024 14:30, 31.12, 14:30 (Enter leaves the bound open)")

	for {
		from, err := p.bound("From: ", ref, true)
		if err != nil {
			return nil, nil, nil, err
		}
		to, err := p.bound("To: ", ref, false)
		if err != nil {
			return nil, nil, nil, err
		}
		if from != nil && to != nil && from.After(*to) {
			p.fail("start is after end")
			continue
		}

		filtered := filter.Period(trades, from, to)
		if len(filtered) == 0 {
			p.fail("no trades in this period")
			continue
		}

		okColor.Fprintf(p.out, "%d trades from %s to %s\n", len(filtered), describeBound(from), describeBound(to))
		answer, err := p.ask("Use this period? (Y/n): ")
		if err != nil {
			return nil, nil, nil, err
		}
		if answer == "" || isYes(answer) {
			return filtered, from, to, nil
		}
	}
}

func (p *Prompter) bound(question string, ref time.Time, isStart bool) (*time.Time, error) {
	for {
		answer, err := p.ask(question)
		if err != nil {
			return nil, err
		}
		if answer == "" {
			return nil, nil
		}
		t, err := filter.ParsePeriodBound(answer, ref, isStart)
		if err != nil {
			p.fail("%v", err)
			continue
		}
		return &t, nil
	}
}

// Pause waits for Enter before the run ends
func (p *Prompter) Pause() error {
	_, err := p.ask("\nPress Enter to finish...")
	return err
}

func isYes(s string) bool {
	switch strings.ToLower(s) {
	case "y", "yes", "д", "да":
		return true
	}
	return false
}

func latest(trades []model.Trade) time.Time {
	var ref time.Time
	for _, t := range trades {
		if t.OpenTime.After(ref) {
			ref = t.OpenTime
		}
	}
	if ref.IsZero() {
		ref = time.Now()
	}
	return ref
}

func describeBound(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02.01.2006 15:04:05")
}
