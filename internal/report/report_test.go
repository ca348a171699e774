package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/comove/tracepair/internal/graph"
)

func TestWriteGroupTimelineHTMLIncludesDevicesAndLeaders(t *testing.T) {
	ld := &graph.LeaderData{
		BeginTimestamp: 0,
		EndTimestamp:   1,
		Duration:       2,
		Devices:        []string{"a", "b"},
		Timestamps: []graph.TimestampLeaders{
			{Timestamp: 0, Leaders: []string{"a"}},
			{Timestamp: 1, Leaders: []string{"b"}},
		},
	}
	groupsByTimestamp := map[int64][][]string{
		0: {{"a", "b"}},
		1: {{"a", "b"}},
	}

	var buf bytes.Buffer
	if err := WriteGroupTimelineHTML(&buf, ld, groupsByTimestamp); err != nil {
		t.Fatalf("WriteGroupTimelineHTML: %v", err)
	}

	html := buf.String()
	if !strings.Contains(html, "Group assignment over time") {
		t.Fatalf("expected rendered title in output")
	}
	if !strings.Contains(html, `"a"`) || !strings.Contains(html, `"b"`) {
		t.Fatalf("expected both device series names in output")
	}
}

func TestGroupIndexOfFindsMembership(t *testing.T) {
	groups := [][]string{{"a", "b"}, {"c"}}
	if idx := groupIndexOf(groups, "c"); idx != 1 {
		t.Fatalf("groupIndexOf(c) = %d, want 1", idx)
	}
	if idx := groupIndexOf(groups, "missing"); idx != -1 {
		t.Fatalf("groupIndexOf(missing) = %d, want -1", idx)
	}
}

func TestWriteDTWPathPNGWritesNonEmptyFile(t *testing.T) {
	costMatrix := [][]float64{
		{0, 1, 2},
		{1, 0, 1},
		{2, 1, 0},
	}
	warpPath := [][2]int{{0, 0}, {1, 1}, {2, 2}}

	out := filepath.Join(t.TempDir(), "dtw.png")
	if err := WriteDTWPathPNG(out, costMatrix, warpPath); err != nil {
		t.Fatalf("WriteDTWPathPNG: %v", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected non-empty PNG output")
	}
}

func TestWriteDTWPathPNGRejectsEmptyMatrix(t *testing.T) {
	if err := WriteDTWPathPNG(filepath.Join(t.TempDir(), "dtw.png"), nil, nil); err == nil {
		t.Fatalf("expected an error for an empty cost matrix")
	}
}
