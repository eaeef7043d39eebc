package trainer

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteReport renders the per-epoch loss curves of a finished run as an
// interactive HTML chart.
func WriteReport(result *Result, path string) error {
	var line = charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Heading model training",
			Subtitle: fmt.Sprintf("best val loss %.6f at epoch %d", result.BestLoss, result.BestEpoch),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
	)

	var xLabels = make([]string, result.Epochs)
	var trainData = make([]opts.LineData, result.Epochs)
	var valData = make([]opts.LineData, result.Epochs)
	for i := 0; i < result.Epochs; i++ {
		xLabels[i] = strconv.Itoa(i + 1)
		trainData[i] = opts.LineData{Value: result.TrainLoss[i]}
		valData[i] = opts.LineData{Value: result.ValLoss[i]}
	}

	line.SetXAxis(xLabels).
		AddSeries("train", trainData).
		AddSeries("validation", valData).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{
				Smooth: opts.Bool(true),
			}),
		)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := line.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
