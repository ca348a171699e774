// Package report renders pipeline artifacts to human-facing output:
// an interactive HTML timeline of group membership and detected
// leaders (go-echarts, grounded on internal/lidar/monitor's debug
// dashboards), and a static DTW cost-matrix/warp-path plot
// (gonum.org/v1/plot, grounded on internal/lidar/monitor/gridplotter.go).
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/comove/tracepair/internal/graph"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// groupIndexOf returns the index of the group containing device
// within groups, or -1 if device appears in none (it was isolated at
// this timestamp).
func groupIndexOf(groups [][]string, device string) int {
	for i, members := range groups {
		for _, m := range members {
			if m == device {
				return i
			}
		}
	}
	return -1
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// WriteGroupTimelineHTML renders an interactive timeline of each
// device's group assignment over [ld.BeginTimestamp, ld.EndTimestamp],
// one line series per device, and marks the timestamps at which a
// device was a detected leader. groupsByTimestamp is looked up once
// per timestamp; graph.DetectGroups returns a map of this shape, and a
// device absent from a timestamp's groups is plotted at index -1.
func WriteGroupTimelineHTML(w io.Writer, ld *graph.LeaderData, groupsByTimestamp map[int64][][]string) error {
	devices := append([]string(nil), ld.Devices...)
	sort.Strings(devices)

	var timestamps []int64
	for _, ts := range ld.Timestamps {
		timestamps = append(timestamps, ts.Timestamp)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	xAxis := make([]string, len(timestamps))
	for i, ts := range timestamps {
		xAxis[i] = fmt.Sprintf("%d", ts)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Group Timeline", Theme: "dark", Width: "1200px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: "Group assignment over time", Subtitle: fmt.Sprintf("%d devices, %d timestamps", len(devices), len(timestamps))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "group index", Min: -1}),
		charts.WithXAxisOpts(opts.XAxis{Name: "timestamp"}),
	)
	line.SetXAxis(xAxis)

	for _, device := range devices {
		points := make([]opts.LineData, len(timestamps))
		for i, ts := range timestamps {
			groups := groupsByTimestamp[ts]
			points[i] = opts.LineData{Value: groupIndexOf(groups, device)}

			if at := ld.At(ts); at != nil && containsString(at.Leaders, device) {
				points[i].SymbolSize = 10
			}
		}
		line.AddSeries(device, points, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}))
	}

	return line.Render(w)
}
