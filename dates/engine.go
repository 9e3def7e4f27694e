package dates

import (
	"fmt"
	"strings"
	"time"

	"airbnb-cleaner/config"
	"airbnb-cleaner/models"
)

// Strategy selects how a block's dates are paired into a stay
type Strategy string

const (
	// ReferenceAnchored only accepts pairings anchored on the reference date and within the stay window
	ReferenceAnchored Strategy = config.StrategyReferenceAnchored
	// NaiveSmallestPair takes the two earliest dates of the block as check-in and check-out
	NaiveSmallestPair Strategy = config.StrategyNaiveSmallestPair
)

// Basis records which rule produced a decision
type Basis string

const (
	BasisNextDate     Basis = "next_date"     // reference paired with the following date
	BasisPreviousDate Basis = "previous_date" // reference paired with the preceding date
	BasisContaining   Basis = "containing"    // reference falls inside an adjacent pair
	BasisSmallestPair Basis = "smallest_pair"
	BasisKeyword      Basis = "keyword" // single-sided, role taken from checkout keywords
)

// Options configures an Engine
type Options struct {
	Strategy         Strategy
	MinStayNights    int
	MaxStayNights    int
	ScanLines        int // 0 scans every line
	SkipNoiseLines   bool
	NoiseTokens      []string
	YearlessDates    bool
	CheckoutKeywords []string
}

// OptionsFromConfig builds engine options from the application config
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Strategy:         Strategy(cfg.Engine.Strategy),
		MinStayNights:    cfg.Engine.MinStayNights,
		MaxStayNights:    cfg.Engine.MaxStayNights,
		ScanLines:        cfg.Engine.DateScanLines,
		SkipNoiseLines:   cfg.Engine.SkipNoiseLines,
		NoiseTokens:      cfg.Vocabulary.DateNoiseTokens,
		YearlessDates:    cfg.Engine.YearlessDates,
		CheckoutKeywords: cfg.Vocabulary.CheckoutKeywords,
	}
}

// Decision is an accepted classification of a block against the reference date
type Decision struct {
	CheckIn  *time.Time
	CheckOut *time.Time
	Type     models.StayType
	Basis    Basis
	Dates    []time.Time // the block's DateSet
}

// Engine extracts dates from blocks and decides their role relative to a reference date
type Engine struct {
	opts Options
	now  func() time.Time
}

// NewEngine creates a new Engine. now supplies the year for yearless dates; nil means time.Now.
func NewEngine(opts Options, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	if opts.Strategy == "" {
		opts.Strategy = ReferenceAnchored
	}
	return &Engine{opts: opts, now: now}
}

// ExtractDates builds the DateSet of a block
func (e *Engine) ExtractDates(lines models.TextBlock) []time.Time {
	scan := lines
	if e.opts.ScanLines > 0 && len(scan) > e.opts.ScanLines {
		scan = scan[:e.opts.ScanLines]
	}

	year := e.now().Year()
	var all []time.Time
	for _, line := range scan {
		if e.opts.SkipNoiseLines && containsAny(strings.ToLower(line), e.opts.NoiseTokens) {
			continue
		}
		all = append(all, ParseLine(line, e.opts.YearlessDates, year)...)
	}

	return Normalize(all)
}

// Decide extracts the block's dates and classifies the block against reference
func (e *Engine) Decide(lines models.TextBlock, rawText string, reference time.Time) (Decision, error) {
	return e.Classify(e.ExtractDates(lines), rawText, reference)
}

// Classify decides which role the reference date plays for an already extracted DateSet.
// rawText is only consulted for checkout keywords when a single-sided decision is needed.
func (e *Engine) Classify(dateSet []time.Time, rawText string, reference time.Time) (Decision, error) {
	ref := Day(reference)
	d := Decision{Dates: dateSet}

	switch {
	case len(dateSet) == 0:
		return d, fmt.Errorf("%w: no dates found", models.ErrNoUsableDates)

	case len(dateSet) == 1:
		if !dateSet[0].Equal(ref) {
			return d, fmt.Errorf("%w: only date %s is not %s", models.ErrNoUsableDates, formatDay(dateSet[0]), formatDay(ref))
		}
		e.assignByKeyword(&d, rawText, ref)

	case e.opts.Strategy == NaiveSmallestPair:
		d.CheckIn = datePtr(dateSet[0])
		d.CheckOut = datePtr(dateSet[1])
		d.Basis = BasisSmallestPair

	default:
		if err := e.pairAroundReference(&d, dateSet, rawText, ref); err != nil {
			return d, err
		}
	}

	if d.CheckIn != nil && d.CheckOut != nil && d.CheckIn.Before(ref) && d.CheckOut.Before(ref) {
		return d, fmt.Errorf("%w: checked out %s", models.ErrAlreadyEnded, formatDay(*d.CheckOut))
	}

	switch {
	case d.CheckOut != nil && d.CheckOut.Equal(ref):
		d.Type = models.StayCheckOut
	case d.CheckIn != nil && d.CheckIn.Equal(ref):
		d.Type = models.StayCheckIn
	default:
		return d, fmt.Errorf("%w: stay %s to %s", models.ErrNotOnReferenceDate, formatOptional(d.CheckIn), formatOptional(d.CheckOut))
	}

	return d, nil
}

func (e *Engine) pairAroundReference(d *Decision, dateSet []time.Time, rawText string, ref time.Time) error {
	idx := -1
	for i, date := range dateSet {
		if date.Equal(ref) {
			idx = i
			break
		}
	}

	if idx >= 0 {
		if idx < len(dateSet)-1 && e.withinWindow(ref, dateSet[idx+1]) {
			d.CheckIn = datePtr(ref)
			d.CheckOut = datePtr(dateSet[idx+1])
			d.Basis = BasisNextDate
			return nil
		}
		if idx > 0 && e.withinWindow(dateSet[idx-1], ref) {
			d.CheckIn = datePtr(dateSet[idx-1])
			d.CheckOut = datePtr(ref)
			d.Basis = BasisPreviousDate
			return nil
		}
		e.assignByKeyword(d, rawText, ref)
		return nil
	}

	for j := 0; j < len(dateSet)-1; j++ {
		start, end := dateSet[j], dateSet[j+1]
		if !start.After(ref) && ref.Before(end) && e.withinWindow(start, end) {
			d.CheckIn = datePtr(start)
			d.CheckOut = datePtr(end)
			d.Basis = BasisContaining
			return nil
		}
	}

	return fmt.Errorf("%w: %d dates, none around %s", models.ErrNoRangeContainingReference, len(dateSet), formatDay(ref))
}

// assignByKeyword makes a single-sided decision on the reference date
func (e *Engine) assignByKeyword(d *Decision, rawText string, ref time.Time) {
	d.Basis = BasisKeyword
	if containsAny(strings.ToLower(rawText), e.opts.CheckoutKeywords) {
		d.CheckOut = datePtr(ref)
		return
	}
	d.CheckIn = datePtr(ref)
}

func (e *Engine) withinWindow(from, to time.Time) bool {
	nights := DaysBetween(from, to)
	return nights >= e.opts.MinStayNights && nights <= e.opts.MaxStayNights
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if token != "" && strings.Contains(s, token) {
			return true
		}
	}
	return false
}

func datePtr(t time.Time) *time.Time {
	return &t
}

func formatDay(t time.Time) string {
	return t.Format("2006-01-02")
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return "?"
	}
	return formatDay(*t)
}
