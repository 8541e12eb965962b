package models

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"shadertune/internal/context"
)

type HeatLevel int

const (
	HeatCold HeatLevel = iota
	HeatWarm
	HeatHot
	HeatCritical
)

func (h HeatLevel) String() string {
	switch h {
	case HeatCold:
		return "COLD"
	case HeatWarm:
		return "WARM"
	case HeatHot:
		return "HOT"
	case HeatCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

func (h HeatLevel) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// Heat classifies cost against the hottest line of the file. Thresholds
// are percentages of maxCost.
func Heat(cost, maxCost, warm, hot, critical int) HeatLevel {
	if cost <= 0 || maxCost <= 0 {
		return HeatCold
	}
	pct := float64(min(cost, maxCost)) * 100 / float64(maxCost)
	switch {
	case pct >= float64(critical):
		return HeatCritical
	case pct >= float64(hot):
		return HeatHot
	case pct >= float64(warm):
		return HeatWarm
	default:
		return HeatCold
	}
}

// LineCosts maps a 1-based source line to its summed cost.
type LineCosts map[int]int

// Total sums every line, saturating at math.MaxInt.
func (lc LineCosts) Total() int {
	return lo.Reduce(lo.Values(lc), func(total, cost int, _ int) int {
		return context.AddCap(total, cost)
	}, 0)
}

func (lc LineCosts) Max() int {
	return lo.Max(lo.Values(lc))
}

// Lines returns the costed line numbers in ascending order.
func (lc LineCosts) Lines() []int {
	lines := lo.Keys(lc)
	slices.Sort(lines)
	return lines
}

type LineCost struct {
	Line   int       `json:"line"`
	Cost   int       `json:"cost"`
	Heat   HeatLevel `json:"heat"`
	Source string    `json:"source"`
}

type FunctionSummary struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Line        int    `json:"line,omitempty"`
	Defined     bool   `json:"defined"`
	RawCost     int    `json:"raw_cost"`
	Cost        int    `json:"cost"`
	Invocations int    `json:"invocations"`
	Resolved    bool   `json:"resolved"`
	CallSites   int    `json:"call_sites"`
}

// Total is the cost of every invocation of the function together.
func (f FunctionSummary) Total() int {
	return context.MulCap(f.Cost, f.Invocations)
}

type LoopSummary struct {
	Line       int    `json:"line"`
	Bound      int    `json:"bound"`
	BoundType  string `json:"bound_type"`
	Depth      int    `json:"depth"`
	Multiplier int    `json:"multiplier"`
}

type FileResult struct {
	File      string            `json:"file"`
	Source    []string          `json:"-"`
	LineCosts LineCosts         `json:"line_costs"`
	TotalCost int               `json:"total_cost"`
	MaxCost   int               `json:"max_cost"`
	Functions []FunctionSummary `json:"functions"`
	Loops     []LoopSummary     `json:"loops,omitempty"`
	HotLines  []LineCost        `json:"hot_lines"`
	Error     string            `json:"error,omitempty"`
}

// SourceLine returns the text of a 1-based line, or "" when out of range.
func (fr *FileResult) SourceLine(line int) string {
	if line < 1 || line > len(fr.Source) {
		return ""
	}
	return fr.Source[line-1]
}

// Finalize computes totals and the topN hottest lines, hottest first and
// earlier lines first on ties.
func (fr *FileResult) Finalize(topN int, heat func(cost, maxCost int) HeatLevel) {
	fr.TotalCost = fr.LineCosts.Total()
	fr.MaxCost = fr.LineCosts.Max()

	lines := lo.Filter(fr.LineCosts.Lines(), func(line int, _ int) bool {
		return fr.LineCosts[line] > 0
	})
	slices.SortStableFunc(lines, func(a, b int) int {
		return cmp.Compare(fr.LineCosts[b], fr.LineCosts[a])
	})
	if len(lines) > topN {
		lines = lines[:topN]
	}

	fr.HotLines = lo.Map(lines, func(line int, _ int) LineCost {
		cost := fr.LineCosts[line]
		return LineCost{
			Line:   line,
			Cost:   cost,
			Heat:   heat(cost, fr.MaxCost),
			Source: fr.SourceLine(line),
		}
	})
}

type AnalysisResult struct {
	Files            []string      `json:"files_analyzed"`
	Results          []*FileResult `json:"results"`
	Failures         int           `json:"failures"`
	TotalCost        int           `json:"total_cost"`
	AnalysisDuration string        `json:"analysis_duration"`
}

func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Files:   make([]string, 0),
		Results: make([]*FileResult, 0),
	}
}

func (ar *AnalysisResult) AddFile(fr *FileResult) {
	ar.Files = append(ar.Files, fr.File)
	ar.Results = append(ar.Results, fr)
	if fr.Error != "" {
		ar.Failures++
		return
	}
	ar.TotalCost = context.AddCap(ar.TotalCost, fr.TotalCost)
}

// HasFailures reports whether any file failed to analyze.
func (ar *AnalysisResult) HasFailures() bool {
	return ar.Failures > 0
}
