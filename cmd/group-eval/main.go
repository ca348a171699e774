// Command group-eval renders an interactive HTML timeline of detected
// group membership and leaders from a following-relation artifact,
// supplementing mp::detect_leaders's plain leader listing with a
// visual summary for manual scene review.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/comove/tracepair/internal/artifact"
	"github.com/comove/tracepair/internal/following"
	"github.com/comove/tracepair/internal/graph"
	"github.com/comove/tracepair/internal/report"
	"github.com/comove/tracepair/internal/telemetry"
	"github.com/comove/tracepair/internal/version"
)

var (
	followingIn  = flag.String("following-in", "", "path to the following-relation artifact (required)")
	htmlOut      = flag.String("html-out", "", "path to write the group timeline HTML (required)")
	useWeights   = flag.Bool("use-weights", true, "weight PageRank edges by the absolute estimated lag")
	binaryFormat = flag.Bool("binary", false, "read the following artifact in the portable binary framing instead of JSON")
)

var versionFlag = flag.Bool("version", false, "print version information and exit")

func main() {
	flag.Parse()
	if *versionFlag {
		fmt.Printf("group-eval v%s (git SHA: %s)\n", version.Version, version.GitSHA)
		os.Exit(0)
	}
	telemetry.SetWriters(os.Stderr, os.Stderr, nil)

	if *followingIn == "" || *htmlOut == "" {
		log.Fatalf("group-eval: -following-in and -html-out are required")
	}

	fd, err := readFollowing(*followingIn, *binaryFormat)
	if err != nil {
		log.Fatalf("group-eval: reading following artifact: %v", err)
	}

	ld, err := graph.DetectLeaders(fd, *useWeights)
	if err != nil {
		log.Fatalf("group-eval: detecting leaders: %v", err)
	}
	groups, err := graph.DetectGroups(fd)
	if err != nil {
		log.Fatalf("group-eval: detecting groups: %v", err)
	}
	telemetry.Diagf("rendering timeline over %d timestamps", ld.Duration)

	out, err := os.Create(*htmlOut)
	if err != nil {
		log.Fatalf("group-eval: creating %s: %v", *htmlOut, err)
	}
	defer out.Close()

	if err := report.WriteGroupTimelineHTML(out, ld, groups); err != nil {
		log.Fatalf("group-eval: rendering timeline: %v", err)
	}
	telemetry.Opsf("wrote group timeline to %s", *htmlOut)
}

func readFollowing(path string, binary bool) (*following.Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if binary {
		return artifact.ReadFollowingDataBinary(f)
	}
	return artifact.ReadFollowingDataJSON(f)
}
