// Package parse reads the pipeline's external text formats — WiFi scan
// lines, GPS fix lines, scripted-scene and game-follow-event ground
// truth, and scene manifests — into the internal/tracing and
// internal/groundtruth types, following mp::parser's istream-based
// readers. These are thin adapters: no algorithmic weight lives here.
package parse

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/comove/tracepair/internal/errs"
	"github.com/comove/tracepair/internal/tracing"
)

// nextToken splits s on delim and returns the token before the next
// delim (or the rest of the string), and the remainder after it.
// Mirrors mp::parser's next_token: absence of delim still yields the
// final token, with ok=false only once the string is fully consumed.
func nextToken(s string, delim byte) (token, rest string, ok bool) {
	if s == "" {
		return "", "", false
	}
	if i := strings.IndexByte(s, delim); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", true
}

func mustToken(s string, delim byte, op, context string) (token, rest string, err error) {
	token, rest, ok := nextToken(s, delim)
	if !ok {
		return "", "", errs.Newf(errs.MalformedInput, op, "expected a token in context %q", context)
	}
	return token, rest, nil
}

// ParseSignalData reads signal-scan lines (spec.md §6): one line per
// (timestamp, device), semicolon-separated, with a repeating
// "<bssid>=<dBm>,<freq>,<x>,<y>" field per observed access point. Lines
// consisting only of stray "pos=" or "id=" tokens are skipped, and
// device streams end up sorted ascending by timestamp.
func ParseSignalData(r io.Reader) (*tracing.SignalData, error) {
	const op = "parse.ParseSignalData"

	result := &tracing.SignalData{}
	apIndex := make(map[string]int)
	devIndex := make(map[string]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := parseSignalLine(line, result, apIndex, devIndex, op); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.New(errs.MalformedInput, op, err)
	}

	sortSignalDevices(result)
	return result, nil
}

func parseSignalLine(line string, result *tracing.SignalData, apIndex, devIndex map[string]int, op string) error {
	tsToken, rest, err := mustToken(line, ';', op, "TIMESTAMP")
	if err != nil {
		return err
	}
	timestamp, err := strconv.ParseInt(tsToken, 10, 64)
	if err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}

	deviceID, rest, err := mustToken(rest, ';', op, "DEVICE_ID")
	if err != nil {
		return err
	}
	deviceIdx := deviceFor(devIndex, deviceID, &result.Devices)

	for {
		var field string
		var ok bool
		field, rest, ok = nextToken(rest, ';')
		if !ok {
			break
		}
		if field == "pos=" || field == "id=" {
			continue
		}

		bssid, dbmField, ok := nextToken(field, '=')
		if !ok {
			return errs.Newf(errs.MalformedInput, op, "malformed access point field %q", field)
		}
		dbmToken, _, ok := nextToken(dbmField, ',')
		if !ok {
			return errs.Newf(errs.MalformedInput, op, "malformed access point field %q", field)
		}
		dbm, err := strconv.Atoi(dbmToken)
		if err != nil {
			return errs.New(errs.MalformedInput, op, err)
		}

		apID := accessPointFor(apIndex, bssid, &result.AccessPoints)
		dev := &result.Devices[deviceIdx]
		dev.Data = append(dev.Data, tracing.SignalMeasurement{
			Timestamp:      timestamp,
			AccessPointID:  apID,
			SignalStrength: dbm,
		})
	}
	return nil
}

func deviceFor(devIndex map[string]int, name string, devices *[]tracing.SignalDevice) int {
	if idx, ok := devIndex[name]; ok {
		return idx
	}
	idx := len(*devices)
	devIndex[name] = idx
	*devices = append(*devices, tracing.SignalDevice{Name: name})
	return idx
}

func accessPointFor(apIndex map[string]int, bssid string, bssids *[]string) int {
	if idx, ok := apIndex[bssid]; ok {
		return idx
	}
	idx := len(*bssids)
	apIndex[bssid] = idx
	*bssids = append(*bssids, bssid)
	return idx
}

func sortSignalDevices(result *tracing.SignalData) {
	for i := range result.Devices {
		dev := &result.Devices[i]
		sort.SliceStable(dev.Data, func(a, b int) bool {
			return dev.Data[a].Timestamp < dev.Data[b].Timestamp
		})
	}
}

// GameSignalParser accumulates per-device scan files for a "game"
// scene, where the timestamp is in milliseconds and each file holds
// exactly one device's stream, following mp::game_signal_data_parser.
type GameSignalParser struct {
	result   tracing.SignalData
	apIndex  map[string]int
	devIndex map[string]int
}

// NewGameSignalParser returns an empty GameSignalParser.
func NewGameSignalParser() *GameSignalParser {
	return &GameSignalParser{
		apIndex:  make(map[string]int),
		devIndex: make(map[string]int),
	}
}

// Parse reads one device's scan file. Comment lines starting with "#"
// are skipped, and the millisecond timestamp column is divided by
// 1000.
func (p *GameSignalParser) Parse(deviceID string, r io.Reader) error {
	const op = "parse.GameSignalParser.Parse"

	deviceFor(p.devIndex, deviceID, &p.result.Devices)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := p.parseLine(line, op); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (p *GameSignalParser) parseLine(line, op string) error {
	tsToken, rest, err := mustToken(line, ';', op, "TIMESTAMP")
	if err != nil {
		return err
	}
	timestampMs, err := strconv.ParseInt(tsToken, 10, 64)
	if err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}
	timestamp := timestampMs / 1000

	deviceID, rest, err := mustToken(rest, ';', op, "DEVICE_ID")
	if err != nil {
		return err
	}
	deviceIdx := deviceFor(p.devIndex, deviceID, &p.result.Devices)

	for {
		var field string
		var ok bool
		field, rest, ok = nextToken(rest, ';')
		if !ok {
			break
		}
		if field == "" {
			continue
		}
		bssid, dbmField, ok := nextToken(field, '=')
		if !ok {
			return errs.Newf(errs.MalformedInput, op, "malformed access point field %q", field)
		}
		dbmToken, _, ok := nextToken(dbmField, ',')
		if !ok {
			return errs.Newf(errs.MalformedInput, op, "malformed access point field %q", field)
		}
		dbm, err := strconv.Atoi(dbmToken)
		if err != nil {
			return errs.New(errs.MalformedInput, op, err)
		}

		apID := accessPointFor(p.apIndex, bssid, &p.result.AccessPoints)
		dev := &p.result.Devices[deviceIdx]
		dev.Data = append(dev.Data, tracing.SignalMeasurement{
			Timestamp:      timestamp,
			AccessPointID:  apID,
			SignalStrength: dbm,
		})
	}
	return nil
}

// Take returns the accumulated signal data, sorted per device by
// timestamp, and resets the parser to an empty state.
func (p *GameSignalParser) Take() *tracing.SignalData {
	result := p.result
	sortSignalDevices(&result)
	p.result = tracing.SignalData{}
	p.apIndex = make(map[string]int)
	p.devIndex = make(map[string]int)
	return &result
}
