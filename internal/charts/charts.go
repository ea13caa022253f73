// Package charts renders analysis results as interactive HTML charts.
package charts

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/mtg-sorter/internal/analysis"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string // Chart title
	Subtitle   string // Chart subtitle
	Width      string // Chart width (e.g., "900px")
	Height     string // Chart height (e.g., "500px")
	Theme      string // Chart theme
	ShowLegend bool   // Show legend
	Colors     []string
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272"},
	}
}

// DataPoint represents a single bar in a chart.
type DataPoint struct {
	Label string
	Value float64
}

// SeriesData represents a named data series for multi-series charts.
type SeriesData struct {
	Name   string
	Points []DataPoint
}

// AnalysisSeries turns an aggregation result into two aligned series, raw
// card counts and weighted scores, keyed in lexicographic bucket order.
func AnalysisSeries(result analysis.Result) []SeriesData {
	keys := result.SortedKeys()

	raw := SeriesData{Name: "Cards", Points: make([]DataPoint, 0, len(keys))}
	weighted := SeriesData{Name: "Weighted", Points: make([]DataPoint, 0, len(keys))}
	for _, key := range keys {
		bucket := result[key]
		raw.Points = append(raw.Points, DataPoint{Label: key, Value: float64(bucket.RawCount)})
		weighted.Points = append(weighted.Points, DataPoint{Label: key, Value: bucket.WeightedScore})
	}
	return []SeriesData{raw, weighted}
}

// RenderBarChart creates an interactive bar chart HTML file from one or more
// series sharing the first series' labels.
func RenderBarChart(series []SeriesData, config ChartConfig, outputPath string) error {
	if len(series) == 0 {
		return fmt.Errorf("no data series provided")
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
	)

	xLabels := make([]string, len(series[0].Points))
	for i, point := range series[0].Points {
		xLabels[i] = point.Label
	}
	bar.SetXAxis(xLabels)

	for i, s := range series {
		yData := make([]opts.BarData, len(s.Points))
		for j, point := range s.Points {
			yData[j] = opts.BarData{Value: point.Value}
		}
		bar.AddSeries(s.Name, yData).
			SetSeriesOptions(
				charts.WithLabelOpts(opts.Label{
					Show: opts.Bool(false),
				}),
				charts.WithItemStyleOpts(opts.ItemStyle{
					Color: config.Colors[i%len(config.Colors)],
				}),
			)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderAnalysisChart renders an aggregation result as a grouped bar chart.
func RenderAnalysisChart(result analysis.Result, title string, outputPath string) error {
	config := DefaultChartConfig()
	config.Title = title
	config.Subtitle = fmt.Sprintf("%d cards across %d groups", result.TotalCount(), len(result))
	return RenderBarChart(AnalysisSeries(result), config, outputPath)
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
