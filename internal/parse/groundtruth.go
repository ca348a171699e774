package parse

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/comove/tracepair/internal/errs"
	"github.com/comove/tracepair/internal/groundtruth"
)

// ParseGroundTruthData reads scripted-scene ground-truth lines
// (spec.md §6):
//
//	FOLLOWER <n> <readable_start> <readable_end> <start_ts> <end_ts> DEV_A DEV_B,DEV_C DEV_D ...
//
// Devices separated by spaces get ascending order; devices joined by
// "," share the same order (they move abreast, not in a line). Each
// FOLLOWER line assigns a fresh group number, starting at 0. Comment
// lines start with "#" and blank lines are skipped.
func ParseGroundTruthData(r io.Reader) (*groundtruth.Data, error) {
	const op = "parse.ParseGroundTruthData"

	result := groundtruth.New()
	group := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := parseFollowerLine(line, result, group, op); err != nil {
			return nil, err
		}
		group++
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.New(errs.MalformedInput, op, err)
	}
	return result, nil
}

func parseFollowerLine(line string, result *groundtruth.Data, group int, op string) error {
	rest := line

	keyword, rest, err := mustToken(rest, ' ', op, "FOLLOWER")
	if err != nil {
		return err
	}
	if strings.ToUpper(keyword) != "FOLLOWER" {
		return errs.Newf(errs.MalformedInput, op, "expected a line starting with FOLLOWER, got %q", keyword)
	}

	// Three free-form tokens: number, human-readable start, human-readable end.
	for _, context := range []string{"NUMBER", "HUMAN_READABLE_START", "HUMAN_READABLE_END"} {
		if _, rest, err = mustToken(rest, ' ', op, context); err != nil {
			return err
		}
	}

	var startToken, endToken string
	if startToken, rest, err = mustToken(rest, ' ', op, "START"); err != nil {
		return err
	}
	if endToken, rest, err = mustToken(rest, ' ', op, "END"); err != nil {
		return err
	}
	start, err := strconv.ParseInt(startToken, 10, 64)
	if err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}
	end, err := strconv.ParseInt(endToken, 10, 64)
	if err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}

	var devices []groundtruth.Device
	order := 0
	for {
		var token string
		var ok bool
		token, rest, ok = nextToken(rest, ' ')
		if !ok {
			break
		}
		if token == "" {
			continue
		}

		if strings.Contains(token, ",") {
			for _, name := range strings.Split(token, ",") {
				if name == "" {
					continue
				}
				devices = append(devices, groundtruth.Device{Name: name, Group: group, Order: order})
			}
		} else {
			devices = append(devices, groundtruth.Device{Name: token, Group: group, Order: order})
		}
		order++
	}

	for ts := start; ts <= end; ts++ {
		result.Timestamps[ts] = append(result.Timestamps[ts], devices...)
	}
	return nil
}

// EvaderIDs maps a device name to its unique evader id within a game scene.
type EvaderIDs map[string]int

// GameGroundTruthParser derives ground truth from per-device
// follow-event files: each evader keeps its own group for the whole
// scene, and every other device's follow state partitions
// [begin, end] into contiguous ranges attributed either to the evader
// it is currently following (order 1) or to a unique fresh group
// (order 0) while free, following mp::game_ground_truth_parser.
type GameGroundTruthParser struct {
	evaders EvaderIDs
	nextID  int
	begin   int64
	end     int64
	gt      *groundtruth.Data
}

// NewGameGroundTruthParser seeds gt with one group per evader, covering
// the entire [begin, end] range, and prepares per-follower id
// allocation starting above the highest evader id.
func NewGameGroundTruthParser(evaders EvaderIDs, begin, end int64) (*GameGroundTruthParser, error) {
	const op = "parse.NewGameGroundTruthParser"
	if begin > end {
		return nil, errs.Newf(errs.RangeError, op, "begin %d must be <= end %d", begin, end)
	}

	gt := groundtruth.New()
	nextID := 0
	seen := make(map[int]bool, len(evaders))
	for name, id := range evaders {
		if seen[id] {
			return nil, errs.Newf(errs.MalformedInput, op, "duplicate evader id: %d", id)
		}
		seen[id] = true
		if id+1 > nextID {
			nextID = id + 1
		}

		dev := groundtruth.Device{Name: name, Group: id, Order: 0}
		for ts := begin; ts <= end; ts++ {
			gt.Timestamps[ts] = append(gt.Timestamps[ts], dev)
		}
	}

	return &GameGroundTruthParser{evaders: evaders, nextID: nextID, begin: begin, end: end, gt: gt}, nil
}

// Parse reads one device's follow-event file
// ("<ms_ts>;<evader_numeric_id_or_-1>"), tolerating a leading
// "timestamp;..." header line. Evader devices are skipped — their
// ground truth is already fixed by the constructor.
func (p *GameGroundTruthParser) Parse(deviceID string, r io.Reader) error {
	const op = "parse.GameGroundTruthParser.Parse"

	uniqueID := p.nextID
	p.nextID++

	if _, isEvader := p.evaders[deviceID]; isEvader {
		return nil
	}

	lastTimestamp := p.begin
	lastEvaderID := -1

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		tsToken, rest, err := mustToken(line, ';', op, "TIMESTAMP")
		if err != nil {
			return err
		}
		if tsToken == "timestamp" {
			continue
		}

		timestampMs, err := strconv.ParseInt(tsToken, 10, 64)
		if err != nil {
			return errs.New(errs.MalformedInput, op, err)
		}
		timestamp := timestampMs / 1000
		if timestamp < p.begin {
			continue
		}
		if timestamp > p.end {
			break
		}

		evaderToken, _, err := mustToken(rest, ';', op, "EVADER_ID")
		if err != nil {
			return err
		}
		evaderID, err := strconv.Atoi(evaderToken)
		if err != nil {
			return errs.New(errs.MalformedInput, op, err)
		}

		if lastTimestamp > timestamp {
			return errs.Newf(errs.MalformedInput, op, "timestamps must be sorted ascending, got %d after %d", timestamp, lastTimestamp)
		}

		groupID, order := uniqueID, 0
		if lastEvaderID != -1 {
			groupID, order = lastEvaderID, 1
		}
		dev := groundtruth.Device{Name: deviceID, Group: groupID, Order: order}
		for ts := lastTimestamp; ts < timestamp; ts++ {
			p.gt.Timestamps[ts] = append(p.gt.Timestamps[ts], dev)
		}

		lastTimestamp = timestamp
		lastEvaderID = evaderID
	}
	if err := scanner.Err(); err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}

	groupID, order := uniqueID, 0
	if lastEvaderID != -1 {
		groupID, order = lastEvaderID, 1
	}
	dev := groundtruth.Device{Name: deviceID, Group: groupID, Order: order}
	for ts := lastTimestamp; ts <= p.end; ts++ {
		p.gt.Timestamps[ts] = append(p.gt.Timestamps[ts], dev)
	}
	return nil
}

// Take returns the accumulated ground truth.
func (p *GameGroundTruthParser) Take() *groundtruth.Data {
	return p.gt
}
