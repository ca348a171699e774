package parse

import (
	"strings"
	"testing"
)

func TestParseSignalDataSkipsStrayTokensAndSorts(t *testing.T) {
	input := strings.Join([]string{
		"100;dev1;AA:BB=-50,2412,1,2;CC:DD=-60,2412,1,2",
		"100;dev1;pos=;id=",
		"101;dev1;AA:BB=-55,2412,1,2",
	}, "\n")

	sd, err := ParseSignalData(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSignalData: %v", err)
	}
	if len(sd.Devices) != 1 || sd.Devices[0].Name != "dev1" {
		t.Fatalf("expected a single device dev1, got %+v", sd.Devices)
	}
	if len(sd.AccessPoints) != 2 {
		t.Fatalf("expected 2 access points, got %d", len(sd.AccessPoints))
	}
	if len(sd.Devices[0].Data) != 3 {
		t.Fatalf("expected 3 measurements (pos=/id= line skipped), got %d", len(sd.Devices[0].Data))
	}
	if sd.Devices[0].Data[0].Timestamp != 100 || sd.Devices[0].Data[2].Timestamp != 101 {
		t.Errorf("expected measurements sorted by timestamp, got %+v", sd.Devices[0].Data)
	}
}

func TestParseSignalDataRejectsMalformedLine(t *testing.T) {
	if _, err := ParseSignalData(strings.NewReader("not-a-timestamp;dev1")); err == nil {
		t.Fatal("expected an error for a non-numeric timestamp")
	}
}

func TestGameSignalParserConvertsMillisecondsAndSharesAPIndex(t *testing.T) {
	p := NewGameSignalParser()
	if err := p.Parse("dev1", strings.NewReader("1000;dev1;AA:BB=-50,2412,1,2")); err != nil {
		t.Fatalf("Parse dev1: %v", err)
	}
	if err := p.Parse("dev2", strings.NewReader("2000;dev2;AA:BB=-70,2412,1,2")); err != nil {
		t.Fatalf("Parse dev2: %v", err)
	}
	sd := p.Take()
	if len(sd.AccessPoints) != 1 {
		t.Fatalf("expected shared access point index across files, got %d", len(sd.AccessPoints))
	}
	if sd.Devices[0].Data[0].Timestamp != 1 {
		t.Errorf("expected millisecond timestamp converted to 1s, got %d", sd.Devices[0].Data[0].Timestamp)
	}
}

func TestParseLocationDataKeepsOnlyLatLngAlt(t *testing.T) {
	input := "100;dev1;1.5;2.5;3.5;10;0;0;0\n99;dev1;1.0;2.0;3.0;10;0;0;0"
	ld, err := ParseLocationData(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseLocationData: %v", err)
	}
	if len(ld.Devices) != 1 {
		t.Fatalf("expected 1 device, got %d", len(ld.Devices))
	}
	data := ld.Devices[0].Data
	if len(data) != 2 || data[0].Timestamp != 99 || data[1].Timestamp != 100 {
		t.Fatalf("expected 2 fixes sorted ascending, got %+v", data)
	}
	if data[0].Lat != 1.0 || data[0].Lng != 2.0 || data[0].Alt != 3.0 {
		t.Errorf("unexpected fix values: %+v", data[0])
	}
}

func TestParseGroundTruthDataGroupsAndOrders(t *testing.T) {
	input := strings.Join([]string{
		"# comment line",
		"FOLLOWER 1 start end 0 1 a b,c d",
	}, "\n")

	gt, err := ParseGroundTruthData(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseGroundTruthData: %v", err)
	}
	for ts := int64(0); ts <= 1; ts++ {
		devices := gt.Timestamps[ts]
		if len(devices) != 4 {
			t.Fatalf("timestamp %d: expected 4 devices, got %d", ts, len(devices))
		}
		byName := make(map[string]int)
		for _, d := range devices {
			byName[d.Name] = d.Order
		}
		if byName["a"] != 0 {
			t.Errorf("expected a at order 0, got %d", byName["a"])
		}
		if byName["b"] != byName["c"] {
			t.Errorf("expected b and c to share order (comma-joined), got %d vs %d", byName["b"], byName["c"])
		}
		if byName["d"] <= byName["b"] {
			t.Errorf("expected d's order to follow b/c, got b=%d d=%d", byName["b"], byName["d"])
		}
	}
}

func TestParseGroundTruthDataRejectsMissingFollowerKeyword(t *testing.T) {
	if _, err := ParseGroundTruthData(strings.NewReader("NOTFOLLOWER 1 a b 0 1 x")); err == nil {
		t.Fatal("expected an error for a line not starting with FOLLOWER")
	}
}

func TestGameGroundTruthParserEvadersAndFollowers(t *testing.T) {
	evaders := EvaderIDs{"evader1": 0}
	p, err := NewGameGroundTruthParser(evaders, 0, 3)
	if err != nil {
		t.Fatalf("NewGameGroundTruthParser: %v", err)
	}

	// follower1 follows evader 0 starting at ts=2000ms (=2s); free before that.
	followerLog := "timestamp;evader\n0;-1\n2000;0\n"
	if err := p.Parse("follower1", strings.NewReader(followerLog)); err != nil {
		t.Fatalf("Parse follower1: %v", err)
	}
	// evader device itself should be skipped if a file is supplied.
	if err := p.Parse("evader1", strings.NewReader("0;-1\n")); err != nil {
		t.Fatalf("Parse evader1: %v", err)
	}

	gt := p.Take()

	// At ts=0 and ts=1, follower1 should be free (unique group, order 0).
	for ts := int64(0); ts <= 1; ts++ {
		var found bool
		for _, d := range gt.Timestamps[ts] {
			if d.Name == "follower1" {
				found = true
				if d.Order != 0 {
					t.Errorf("ts %d: expected follower1 at order 0 while free, got %d", ts, d.Order)
				}
				if d.Group == 0 {
					t.Errorf("ts %d: expected follower1's free group to differ from evader group 0", ts)
				}
			}
		}
		if !found {
			t.Errorf("ts %d: expected an entry for follower1", ts)
		}
	}

	// At ts=2 and ts=3, follower1 should be following evader1's group (0), order 1.
	for ts := int64(2); ts <= 3; ts++ {
		var found bool
		for _, d := range gt.Timestamps[ts] {
			if d.Name == "follower1" {
				found = true
				if d.Group != 0 || d.Order != 1 {
					t.Errorf("ts %d: expected follower1 in group 0 order 1, got group=%d order=%d", ts, d.Group, d.Order)
				}
			}
		}
		if !found {
			t.Errorf("ts %d: expected an entry for follower1", ts)
		}
	}

	// evader1 should be present at every timestamp in its own group.
	for ts := int64(0); ts <= 3; ts++ {
		var found bool
		for _, d := range gt.Timestamps[ts] {
			if d.Name == "evader1" && d.Group == 0 && d.Order == 0 {
				found = true
			}
		}
		if !found {
			t.Errorf("ts %d: expected evader1 at group 0 order 0", ts)
		}
	}
}

func TestLoadManifestPlainResolvesRelativePaths(t *testing.T) {
	body := `{
		"name": "scene1",
		"scene_type": "plain",
		"data_type": "signal",
		"start": 0,
		"end": 10,
		"targets": ["a", "b"],
		"data": {"data_file": "scan.csv", "ground_truth_file": "gt.txt"}
	}`
	m, err := LoadManifest(strings.NewReader(body), "/scenes/scene1")
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Plain.DataFile != "/scenes/scene1/scan.csv" {
		t.Errorf("expected resolved data file path, got %q", m.Plain.DataFile)
	}
	if m.Plain.GroundTruthFile != "/scenes/scene1/gt.txt" {
		t.Errorf("expected resolved ground truth path, got %q", m.Plain.GroundTruthFile)
	}
}

func TestLoadManifestGameValidatesEvadersInTargets(t *testing.T) {
	body := `{
		"name": "scene2",
		"scene_type": "game",
		"data_type": "signal",
		"start": 0,
		"end": 10,
		"targets": ["a"],
		"data": {"folder": "scans", "evaders": {"not-a-target": 0}}
	}`
	if _, err := LoadManifest(strings.NewReader(body), "/scenes/scene2"); err == nil {
		t.Fatal("expected an error when an evader is not listed among targets")
	}
}

func TestLoadManifestRejectsInvalidTimeRange(t *testing.T) {
	body := `{
		"name": "scene3",
		"scene_type": "plain",
		"data_type": "signal",
		"start": 10,
		"end": 0,
		"targets": ["a"],
		"data": {"data_file": "scan.csv"}
	}`
	if _, err := LoadManifest(strings.NewReader(body), "/scenes/scene3"); err == nil {
		t.Fatal("expected an error for end < start")
	}
}
