package income

import (
	"math"
	"sort"

	"github.com/dvloznov/hcstc-decisioning/internal/domain"
	"github.com/montanaflynn/stats"
)

// Cadence is the payment frequency inferred from the average interval.
type Cadence string

const (
	CadenceWeekly      Cadence = "weekly"
	CadenceFortnightly Cadence = "fortnightly"
	CadenceMonthly     Cadence = "monthly"
	CadenceQuarterly   Cadence = "quarterly"
	CadenceIrregular   Cadence = "irregular"
)

// SourceType is the inferred kind of a recurring income source.
type SourceType string

const (
	SourceSalary   SourceType = "salary"
	SourceBenefits SourceType = "benefits"
	SourcePension  SourceType = "pension"
	SourceUnknown  SourceType = "unknown"
)

// behaviouralMinAmount is the smallest average payment that can be treated as
// salary without any keyword.
const behaviouralMinAmount = 200.0

// CadenceOf classifies an average interval in days.
func CadenceOf(days float64) Cadence {
	switch {
	case days >= 5 && days <= 9:
		return CadenceWeekly
	case days >= 11 && days <= 17:
		return CadenceFortnightly
	case days >= 25 && days <= 35:
		return CadenceMonthly
	case days >= 80 && days <= 100:
		return CadenceQuarterly
	default:
		return CadenceIrregular
	}
}

// RecurringSource is a cluster of similar credits inferred to be one income
// stream.
type RecurringSource struct {
	Pattern       string
	AverageAmount float64
	StdDev        float64
	IntervalDays  float64
	Cadence       Cadence
	Occurrences   int
	Positions     []int
	Confidence    float64
	Type          SourceType
	DayConsistent bool
}

// PatternIndex maps transaction positions in one analysed batch to the
// recurring source they belong to. It is built once per batch and never
// mutated, so it can be shared freely and simply dropped when the batch is
// done. A nil *PatternIndex is an empty index.
type PatternIndex struct {
	sources []RecurringSource
	byPos   map[int]int
}

// Lookup returns the recurring source containing the transaction at pos.
func (p *PatternIndex) Lookup(pos int) (RecurringSource, bool) {
	if p == nil {
		return RecurringSource{}, false
	}
	i, ok := p.byPos[pos]
	if !ok {
		return RecurringSource{}, false
	}
	return p.sources[i], true
}

// Sources returns the detected sources, highest confidence first.
func (p *PatternIndex) Sources() []RecurringSource {
	if p == nil {
		return nil
	}
	out := make([]RecurringSource, len(p.sources))
	copy(out, p.sources)
	return out
}

// Len returns the number of detected sources.
func (p *PatternIndex) Len() int {
	if p == nil {
		return 0
	}
	return len(p.sources)
}

// AnalyzeBatch groups credits by normalized description and keeps the groups
// that repeat on a recognised cadence with consistent amounts.
func (d *Detector) AnalyzeBatch(txns []domain.Transaction) *PatternIndex {
	groups := make(map[string][]int)
	var order []string
	for i, t := range txns {
		if !t.IsCredit() || t.Magnitude() < d.cfg.MinAmount || t.Date.IsZero() {
			continue
		}
		key := Normalize(t.Description)
		if key == "" {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	index := &PatternIndex{byPos: make(map[int]int)}
	for _, key := range order {
		positions := groups[key]
		if len(positions) < d.cfg.MinOccurrences {
			continue
		}
		src, ok := d.analyzeGroup(key, positions, txns)
		if !ok {
			continue
		}
		index.sources = append(index.sources, src)
	}

	sort.SliceStable(index.sources, func(i, j int) bool {
		return index.sources[i].Confidence > index.sources[j].Confidence
	})
	for i, src := range index.sources {
		for _, pos := range src.Positions {
			if _, taken := index.byPos[pos]; !taken {
				index.byPos[pos] = i
			}
		}
	}
	return index
}

func (d *Detector) analyzeGroup(key string, positions []int, txns []domain.Transaction) (RecurringSource, bool) {
	sorted := make([]int, len(positions))
	copy(sorted, positions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return txns[sorted[i]].Date.Before(txns[sorted[j]].Date)
	})

	amounts := make([]float64, len(sorted))
	for i, pos := range sorted {
		amounts[i] = txns[pos].Magnitude()
	}
	avg := mean(amounts)
	if avg == 0 {
		return RecurringSource{}, false
	}

	var intervals []float64
	for i := 1; i < len(sorted); i++ {
		prev := txns[sorted[i-1]].Day()
		cur := txns[sorted[i]].Day()
		intervals = append(intervals, cur.Sub(prev).Hours()/24)
	}
	interval := mean(intervals)
	cadence := CadenceOf(interval)
	if cadence == CadenceIrregular {
		return RecurringSource{}, false
	}

	dayConsistent := false
	if cadence == CadenceMonthly {
		days := make([]float64, len(sorted))
		for i, pos := range sorted {
			days[i] = float64(txns[pos].Date.Day())
		}
		dayConsistent = maxDeviation(days, mean(days)) <= d.cfg.DayTolerance
	}

	deviation := maxDeviation(amounts, avg) / avg
	bound := d.cfg.LooseVariance
	if cadence == CadenceMonthly && dayConsistent {
		bound = d.cfg.TightVariance
	}
	if deviation > bound {
		return RecurringSource{}, false
	}

	src := RecurringSource{
		Pattern:       key,
		AverageAmount: avg,
		StdDev:        populationStdDev(amounts),
		IntervalDays:  interval,
		Cadence:       cadence,
		Occurrences:   len(sorted),
		Positions:     positions,
		DayConsistent: dayConsistent,
	}
	src.Type, src.Confidence = classifySource(key, avg, len(sorted), cadence, dayConsistent)
	if src.Confidence == 0 {
		return RecurringSource{}, false
	}
	return src, true
}

// classifySource assigns a source type and confidence from keyword families,
// company suffixes and cadence. A zero confidence rejects the source.
func classifySource(desc string, amount float64, count int, cadence Cadence, dayConsistent bool) (SourceType, float64) {
	if isExcluded(desc) || isLoan(desc) {
		return SourceUnknown, 0
	}
	base := math.Min(0.7, 0.4+0.1*float64(count))
	monthly := cadence == CadenceMonthly

	switch {
	case hasPayrollKeyword(desc):
		switch {
		case cadence == CadenceWeekly || cadence == CadenceFortnightly:
			return SourceSalary, math.Min(0.95, base+0.25)
		case monthly && dayConsistent:
			return SourceSalary, math.Min(0.95, base+0.30)
		case monthly:
			return SourceSalary, math.Min(0.95, base+0.20)
		}
		return SourceSalary, math.Min(0.90, base+0.15)
	case hasBenefitKeyword(desc):
		if monthly {
			return SourceBenefits, math.Min(0.95, base+0.25)
		}
		return SourceBenefits, math.Min(0.90, base+0.15)
	case hasPensionKeyword(desc):
		if monthly {
			return SourcePension, math.Min(0.95, base+0.25)
		}
		return SourcePension, math.Min(0.90, base+0.15)
	case companySuffix.MatchString(desc):
		switch {
		case monthly && dayConsistent:
			return SourceSalary, math.Min(0.90, base+0.25)
		case monthly || cadence == CadenceFortnightly:
			return SourceSalary, math.Min(0.85, base+0.15)
		}
		return SourceSalary, math.Min(0.75, base+0.10)
	}

	if amount >= behaviouralMinAmount {
		switch {
		case monthly && dayConsistent:
			return SourceSalary, math.Min(0.95, base+0.30)
		case cadence == CadenceFortnightly:
			return SourceSalary, math.Min(0.90, base+0.20)
		case cadence == CadenceWeekly:
			return SourceSalary, math.Min(0.85, base+0.15)
		case monthly:
			return SourceUnknown, math.Min(0.70, base+0.10)
		}
	}
	return SourceUnknown, base
}

func mean(xs []float64) float64 {
	avg, err := stats.Mean(xs)
	if err != nil {
		return 0
	}
	return avg
}

func maxDeviation(xs []float64, centre float64) float64 {
	worst := 0.0
	for _, x := range xs {
		if dev := math.Abs(x - centre); dev > worst {
			worst = dev
		}
	}
	return worst
}

func populationStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationPopulation(xs)
	if err != nil {
		return 0
	}
	return sd
}
