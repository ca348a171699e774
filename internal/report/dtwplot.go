package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// costGrid adapts a DTW cost matrix to plotter.GridXYZ, one cell per
// (a-index, b-index) pair.
type costGrid struct {
	matrix [][]float64
}

func (g costGrid) Dims() (c, r int) { return len(g.matrix[0]), len(g.matrix) }
func (g costGrid) Z(c, r int) float64 { return g.matrix[r][c] }
func (g costGrid) X(c int) float64  { return float64(c) }
func (g costGrid) Y(r int) float64  { return float64(r) }

// WriteDTWPathPNG renders a cost-matrix heatmap with the optimal warp
// path overlaid, grounded on internal/lidar/monitor/gridplotter.go's
// plot.New/Save usage, and saves it to path.
func WriteDTWPathPNG(path string, costMatrix [][]float64, warpPath [][2]int) error {
	if len(costMatrix) == 0 || len(costMatrix[0]) == 0 {
		return fmt.Errorf("report.WriteDTWPathPNG: empty cost matrix")
	}

	p := plot.New()
	p.Title.Text = "DTW cost matrix and warp path"
	p.X.Label.Text = "series A index"
	p.Y.Label.Text = "series B index"

	heat := plotter.NewHeatMap(costGrid{matrix: costMatrix}, moreland.SmoothBlueRed())
	p.Add(heat)

	pathPts := make(plotter.XYs, len(warpPath))
	for i, step := range warpPath {
		pathPts[i] = plotter.XY{X: float64(step[0]), Y: float64(step[1])}
	}
	line, err := plotter.NewLine(pathPts)
	if err != nil {
		return fmt.Errorf("report.WriteDTWPathPNG: warp path line: %w", err)
	}
	line.Width = vg.Points(2)
	p.Add(line)

	return p.Save(8*vg.Inch, 8*vg.Inch, path)
}
