// Command dtw-path-example demonstrates dynamic time warping on a
// scene's tracing data: it warps one device's trace against another's
// and renders the resulting cost matrix and warp path as a PNG,
// supplementing mp::feature_computation's dtw kernel with a visual aid
// for tuning window_size and time_lag.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/comove/tracepair/internal/config"
	"github.com/comove/tracepair/internal/fsutil"
	"github.com/comove/tracepair/internal/parse"
	"github.com/comove/tracepair/internal/report"
	"github.com/comove/tracepair/internal/scene"
	"github.com/comove/tracepair/internal/similarity"
	"github.com/comove/tracepair/internal/telemetry"
	"github.com/comove/tracepair/internal/tracing"
	"github.com/comove/tracepair/internal/version"
)

var diskFS fsutil.FileSystem = fsutil.OSFileSystem{}

var (
	manifestPath = flag.String("manifest", "", "path to scene manifest JSON (required)")
	configPath   = flag.String("config", config.DefaultConfigPath, "path to run configuration JSON")
	deviceA      = flag.String("device-a", "", "name of the first device to warp (required)")
	deviceB      = flag.String("device-b", "", "name of the second device to warp (required)")
	pngOut       = flag.String("png-out", "", "path to write the cost-matrix/warp-path PNG (required)")
)

var versionFlag = flag.Bool("version", false, "print version information and exit")

func main() {
	flag.Parse()
	if *versionFlag {
		fmt.Printf("dtw-path-example v%s (git SHA: %s)\n", version.Version, version.GitSHA)
		os.Exit(0)
	}
	telemetry.SetWriters(os.Stderr, os.Stderr, nil)

	if *manifestPath == "" || *deviceA == "" || *deviceB == "" || *pngOut == "" {
		log.Fatalf("dtw-path-example: -manifest, -device-a, -device-b and -png-out are required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("dtw-path-example: loading config: %v", err)
	}
	m, err := parse.LoadManifestFile(*manifestPath)
	if err != nil {
		log.Fatalf("dtw-path-example: loading manifest: %v", err)
	}

	td, err := buildTracingData(m, cfg)
	if err != nil {
		log.Fatalf("dtw-path-example: building tracing data: %v", err)
	}

	a, err := findDevice(td, *deviceA)
	if err != nil {
		log.Fatalf("dtw-path-example: %v", err)
	}
	b, err := findDevice(td, *deviceB)
	if err != nil {
		log.Fatalf("dtw-path-example: %v", err)
	}

	seqA := deviceRows(td, a)
	seqB := deviceRows(td, b)
	telemetry.Diagf("warping %q (%d samples) against %q (%d samples)", *deviceA, len(seqA), *deviceB, len(seqB))

	dtw := similarity.NewDTW(len(seqA), len(seqB))
	cost := dtw.RunVector(seqA, seqB, similarity.EuclideanDistance)
	telemetry.Opsf("DTW cost between %q and %q: %.4f", *deviceA, *deviceB, cost)

	if err := report.WriteDTWPathPNG(*pngOut, dtw.CostMatrix(), dtw.WarpPath()); err != nil {
		log.Fatalf("dtw-path-example: rendering PNG: %v", err)
	}
}

func buildTracingData(m *parse.Manifest, cfg *config.RunConfig) (*tracing.Data, error) {
	return scene.LoadTracingData(diskFS, m, cfg)
}

func findDevice(td *tracing.Data, name string) (*tracing.Device, error) {
	for i := range td.Devices {
		if td.Devices[i].Name == name {
			return &td.Devices[i], nil
		}
	}
	return nil, errDeviceNotFound(name)
}

type errDeviceNotFound string

func (e errDeviceNotFound) Error() string { return "device not found: " + string(e) }

func deviceRows(td *tracing.Data, dev *tracing.Device) [][]float64 {
	rows := make([][]float64, dev.Data.Rows())
	for i := range rows {
		rows[i] = dev.Data.Row(i)
	}
	return rows
}
