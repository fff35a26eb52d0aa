package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

func round1(x float64) float64 { return math.Round(x*10) / 10 }

func dec(x float64) decimal.Decimal { return decimal.NewFromFloat(x) }

// pence rounds a money amount to two places at the float edge.
func pence(d decimal.Decimal) float64 { return d.Round(2).InexactFloat64() }

// perMonth averages a total over a window of months.
func perMonth(total decimal.Decimal, months int) decimal.Decimal {
	return total.Div(decimal.NewFromInt(int64(months)))
}

func mean(xs []float64) float64 {
	avg, err := stats.Mean(xs)
	if err != nil {
		return 0
	}
	return avg
}

// sampleStdDev uses the n-1 denominator and is zero below two values.
func sampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(xs)
	if err != nil {
		return 0
	}
	return sd
}

// monthlySeries orders monthly totals oldest first.
func monthlySeries(byMonth map[time.Time]decimal.Decimal) []float64 {
	months := make([]time.Time, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	out := make([]float64, len(months))
	for i, m := range months {
		out[i] = byMonth[m].InexactFloat64()
	}
	return out
}

// stabilityScore is 100 minus the coefficient of variation of monthly
// income, clamped to 0-100.
func stabilityScore(monthly []float64) float64 {
	if len(monthly) < 2 {
		return 50
	}
	avg := mean(monthly)
	if avg == 0 {
		return 0
	}
	cv := sampleStdDev(monthly) / avg * 100
	return round1(math.Max(0, math.Min(100, 100-cv)))
}

// regularityScore buckets the spread of pay days across the month.
func regularityScore(days []float64) float64 {
	if len(days) < 2 {
		return 50
	}
	sd := sampleStdDev(days)
	switch {
	case sd <= 2:
		return 100
	case sd <= 5:
		return 80
	case sd <= 10:
		return 60
	case sd <= 15:
		return 40
	default:
		return 20
	}
}

// trend compares the latest month with the mean of the earlier months.
func trend(monthly []float64) (float64, bool) {
	if len(monthly) < 2 {
		return 0, false
	}
	last := monthly[len(monthly)-1]
	earlier := mean(monthly[:len(monthly)-1])
	if earlier <= 0 {
		return 0, false
	}
	return round1((last - earlier) / earlier * 100), true
}
