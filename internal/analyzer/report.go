package analyzer

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shadertune/internal/config"
	"shadertune/internal/models"
)

// DefaultHTMLOutput is where html reports go when no output file is set.
const DefaultHTMLOutput = "output.html"

// ReportGenerator handles formatting and displaying analysis results
type ReportGenerator struct {
	format string
	config *config.Config
}

// NewReportGenerator creates a new report generator
func NewReportGenerator(format string) *ReportGenerator {
	return &ReportGenerator{
		format: format,
		config: config.DefaultConfig(),
	}
}

func NewReportGeneratorWithConfig(cfg *config.Config) *ReportGenerator {
	return &ReportGenerator{
		format: cfg.Output.Format,
		config: cfg,
	}
}

// Generate creates a formatted report from analysis results
func (r *ReportGenerator) Generate(result *models.AnalysisResult) string {
	switch r.format {
	case "json":
		return r.generateJSON(result)
	case "html":
		return r.generateHTML(result)
	default:
		return r.generateConsole(result)
	}
}

func (r *ReportGenerator) generateJSON(result *models.AnalysisResult) string {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error generating JSON report: %v", err)
	}
	return string(data)
}

var heatTitle = cases.Title(language.English)

// HeatLabel renders a heat level for humans, e.g. "Critical".
func HeatLabel(h models.HeatLevel) string {
	return heatTitle.String(strings.ToLower(h.String()))
}

func (r *ReportGenerator) heat(cost, maxCost int) models.HeatLevel {
	ht := r.config.Analysis.HeatThresholds
	return models.Heat(cost, maxCost, ht.Warm, ht.Hot, ht.Critical)
}

// heatStyle returns the console style of a heat level; cold lines are
// printed unstyled.
func heatStyle(h models.HeatLevel) *color.Color {
	switch h {
	case models.HeatWarm:
		return color.New(color.BgYellow, color.FgBlack)
	case models.HeatHot:
		return color.New(color.BgHiRed, color.FgBlack)
	case models.HeatCritical:
		return color.New(color.BgRed, color.FgWhite, color.Bold)
	default:
		return nil
	}
}

func (r *ReportGenerator) generateConsole(result *models.AnalysisResult) string {
	var report strings.Builder
	useColors := r.config.Output.Colors

	if useColors {
		report.WriteString(color.CyanString("shadertune Cost Report\n"))
		report.WriteString(color.WhiteString("═══════════════════════════════════════\n\n"))
	} else {
		report.WriteString("shadertune Cost Report\n")
		report.WriteString("=======================================\n\n")
	}

	if r.config.Output.Verbose {
		r.writeConfigInfo(&report)
	}
	r.writeSummary(&report, result, useColors)

	for _, fr := range result.Results {
		r.writeFile(&report, fr, useColors)
	}

	report.WriteString(fmt.Sprintf("Analysis completed in %s\n", result.AnalysisDuration))
	return report.String()
}

func (r *ReportGenerator) writeConfigInfo(report *strings.Builder) {
	a := r.config.Analysis
	report.WriteString("Configuration:\n")
	report.WriteString(fmt.Sprintf("   Loop nesting: %s\n", a.LoopNesting))
	report.WriteString(fmt.Sprintf("   Function identity: %s\n", a.FunctionIdentity))
	report.WriteString(fmt.Sprintf("   Recursion: %s\n", a.Recursion))
	report.WriteString(fmt.Sprintf("   Heat thresholds: %d/%d/%d\n\n",
		a.HeatThresholds.Warm, a.HeatThresholds.Hot, a.HeatThresholds.Critical))
}

func (r *ReportGenerator) writeSummary(report *strings.Builder, result *models.AnalysisResult, useColors bool) {
	report.WriteString("Summary:\n")
	report.WriteString(fmt.Sprintf("   Files analyzed: %d\n", len(result.Files)))
	if result.HasFailures() {
		failures := fmt.Sprintf("%d", result.Failures)
		if useColors {
			failures = color.RedString(failures)
		}
		report.WriteString(fmt.Sprintf("   Failures: %s\n", failures))
	}
	report.WriteString(fmt.Sprintf("   Total cost: %d\n\n", result.TotalCost))
}

func (r *ReportGenerator) writeFile(report *strings.Builder, fr *models.FileResult, useColors bool) {
	header := fmt.Sprintf("%s (total %d, max %d)", fr.File, fr.TotalCost, fr.MaxCost)
	if fr.Error != "" {
		header = fr.File
	}
	if useColors {
		header = color.New(color.FgCyan, color.Bold).Sprint(header)
	}
	report.WriteString(header + "\n")
	report.WriteString(strings.Repeat("─", 50) + "\n")

	if fr.Error != "" {
		if useColors {
			report.WriteString(color.RedString("%s\n\n", fr.Error))
		} else {
			report.WriteString(fr.Error + "\n\n")
		}
		return
	}

	for i, text := range fr.Source {
		line := i + 1
		cost := fr.LineCosts[line]
		row := fmt.Sprintf("%4d | %6d | %s", line, cost, text)
		if style := heatStyle(r.heat(cost, fr.MaxCost)); useColors && style != nil {
			row = style.Sprint(row)
		}
		report.WriteString(row + "\n")
	}
	report.WriteString("\n")

	if r.config.Output.ShowFunctions && len(fr.Functions) > 0 {
		r.writeFunctions(report, fr.Functions)
	}
	if r.config.Output.Verbose && len(fr.Loops) > 0 {
		r.writeLoops(report, fr.Loops)
	}
	if len(fr.HotLines) > 0 {
		r.writeHotLines(report, fr.HotLines, useColors)
	}
}

func (r *ReportGenerator) writeFunctions(report *strings.Builder, functions []models.FunctionSummary) {
	names := lo.Map(functions, func(f models.FunctionSummary, _ int) string {
		if !f.Resolved {
			return f.Key + " (unresolved)"
		}
		return f.Key
	})
	width := max(lo.Max(lo.Map(names, func(name string, _ int) int {
		return len(name)
	})), len("Function"))

	report.WriteString("Functions:\n")
	report.WriteString(fmt.Sprintf("   %-*s %8s %8s %11s %8s\n", width, "Function", "Raw", "Cost", "Invocations", "Total"))
	for i, f := range functions {
		report.WriteString(fmt.Sprintf("   %-*s %8d %8d %11d %8d\n",
			width, names[i], f.RawCost, f.Cost, f.Invocations, f.Total()))
	}
	report.WriteString("\n")
}

func (r *ReportGenerator) writeLoops(report *strings.Builder, loops []models.LoopSummary) {
	report.WriteString("Loops:\n")
	for _, l := range loops {
		report.WriteString(fmt.Sprintf("   line %d: bound %d (%s), depth %d, multiplier %d\n",
			l.Line, l.Bound, l.BoundType, l.Depth, l.Multiplier))
	}
	report.WriteString("\n")
}

func (r *ReportGenerator) writeHotLines(report *strings.Builder, lines []models.LineCost, useColors bool) {
	report.WriteString("Hottest lines:\n")
	for _, lc := range lines {
		label := HeatLabel(lc.Heat)
		if style := heatStyle(lc.Heat); useColors && style != nil {
			label = style.Sprint(label)
		}
		report.WriteString(fmt.Sprintf("   line %d: cost %d %s  %s\n",
			lc.Line, lc.Cost, label, strings.TrimSpace(lc.Source)))
	}
	report.WriteString("\n")
}

// HeatColor interpolates from white at zero cost to pure red at maxCost,
// as a CSS hex color.
func HeatColor(cost, maxCost int) string {
	if cost <= 0 || maxCost <= 0 {
		return "#ffffff"
	}
	cost = min(cost, maxCost)
	fade := 255 - int(float64(cost)*255/float64(maxCost))
	return fmt.Sprintf("#ff%02x%02x", fade, fade)
}

type htmlRow struct {
	Line       int
	Source     string
	Cost       int
	Background string
}

type htmlFile struct {
	Name      string
	TotalCost int
	Error     string
	Rows      []htmlRow
}

var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>shadertune report</title>
<style>
body { font-family: sans-serif; }
table { border-collapse: collapse; font-family: monospace; }
td { padding: 0 8px; white-space: pre; }
td.line, td.cost { text-align: right; color: #555; }
.error { color: #b00; white-space: pre; }
</style>
</head>
<body>
{{range .}}<h2>{{.Name}}</h2>
{{if .Error}}<p class="error">{{.Error}}</p>
{{else}}<p>Total cost: {{.TotalCost}}</p>
<table>
{{range .Rows}}<tr style="background-color: {{.Background}}"><td class="line">{{.Line}}</td><td class="source">{{.Source}}</td><td class="cost">{{.Cost}}</td></tr>
{{end}}</table>
{{end}}{{end}}</body>
</html>
`))

func (r *ReportGenerator) generateHTML(result *models.AnalysisResult) string {
	files := lo.Map(result.Results, func(fr *models.FileResult, _ int) htmlFile {
		file := htmlFile{Name: fr.File, TotalCost: fr.TotalCost, Error: fr.Error}
		for i, text := range fr.Source {
			cost := fr.LineCosts[i+1]
			file.Rows = append(file.Rows, htmlRow{
				Line:       i + 1,
				Source:     text,
				Cost:       cost,
				Background: HeatColor(cost, fr.MaxCost),
			})
		}
		return file
	})

	var out strings.Builder
	if err := htmlReport.Execute(&out, files); err != nil {
		return fmt.Sprintf("Error generating HTML report: %v", err)
	}
	return out.String()
}
