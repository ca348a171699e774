// Command detect-leaders builds the per-timestamp following graph
// from a following-relation artifact and runs weighted PageRank over
// each connected component to detect its leader, following
// mp::detect_leaders. It can optionally dump one timestamp's graph
// (the final one by default) as GraphML for external visualization.
// Per-timestamp group membership is not written.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/comove/tracepair/internal/artifact"
	"github.com/comove/tracepair/internal/following"
	"github.com/comove/tracepair/internal/graph"
	"github.com/comove/tracepair/internal/telemetry"
	"github.com/comove/tracepair/internal/version"
)

var (
	followingIn  = flag.String("following-in", "", "path to the following-relation artifact (required)")
	leadersOut   = flag.String("leaders-out", "", "path to write the leader artifact (required)")
	graphmlOut   = flag.String("graphml-out", "", "path to write a GraphML dump of the graph at -graphml-timestamp (optional)")
	graphmlTS    = flag.Int64("graphml-timestamp", -1, "timestamp to dump as GraphML; defaults to the scene's last timestamp")
	useWeights   = flag.Bool("use-weights", true, "weight PageRank edges by the absolute estimated lag instead of treating the graph as unweighted")
	binaryFormat = flag.Bool("binary", false, "read/write artifacts in the portable binary framing instead of JSON")
)

var versionFlag = flag.Bool("version", false, "print version information and exit")

func main() {
	flag.Parse()
	if *versionFlag {
		fmt.Printf("detect-leaders v%s (git SHA: %s)\n", version.Version, version.GitSHA)
		os.Exit(0)
	}
	telemetry.SetWriters(os.Stderr, os.Stderr, nil)

	if *followingIn == "" || *leadersOut == "" {
		log.Fatalf("detect-leaders: -following-in and -leaders-out are required")
	}

	fd, err := readFollowing(*followingIn, *binaryFormat)
	if err != nil {
		log.Fatalf("detect-leaders: reading following artifact: %v", err)
	}

	ld, err := graph.DetectLeaders(fd, *useWeights)
	if err != nil {
		log.Fatalf("detect-leaders: %v", err)
	}
	telemetry.Opsf("detected leaders across %d timestamps", ld.Duration)

	if err := writeLeaders(*leadersOut, ld, *binaryFormat); err != nil {
		log.Fatalf("detect-leaders: writing leader artifact: %v", err)
	}

	if *graphmlOut != "" {
		ts := *graphmlTS
		if ts < 0 {
			ts = fd.EndTimestamp
		}
		g, err := graph.FollowingGraphAt(fd, ts)
		if err != nil {
			log.Fatalf("detect-leaders: building graph at timestamp %d: %v", ts, err)
		}
		f, err := os.Create(*graphmlOut)
		if err != nil {
			log.Fatalf("detect-leaders: creating %s: %v", *graphmlOut, err)
		}
		defer f.Close()
		if err := graph.WriteGraphML(f, g, fd.Devices); err != nil {
			log.Fatalf("detect-leaders: writing GraphML: %v", err)
		}
		telemetry.Diagf("wrote GraphML dump for timestamp %d to %s", ts, *graphmlOut)
	}
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

func writeLeaders(path string, ld *graph.LeaderData, binary bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if binary {
		return artifact.WriteLeaderDataBinary(f, ld)
	}
	return artifact.WriteLeaderDataJSON(f, ld)
}
