package parse

import (
	"bufio"
	"io"
	"sort"
	"strconv"

	"github.com/comove/tracepair/internal/errs"
	"github.com/comove/tracepair/internal/tracing"
)

// ParseLocationData reads location-fix lines (spec.md §6):
// "<ts>;<device_id>;<lat>;<lng>;<alt>;<uncertainty>;<speed>;<heading>;<vspeed>".
// Only timestamp, lat, lng and alt are retained — the remaining
// columns are parsed (to validate shape) and discarded, matching
// tracing.LocationMeasurement's fields.
func ParseLocationData(r io.Reader) (*tracing.LocationData, error) {
	const op = "parse.ParseLocationData"

	result := &tracing.LocationData{}
	devIndex := make(map[string]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := parseLocationLine(line, result, devIndex, op); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.New(errs.MalformedInput, op, err)
	}

	for i := range result.Devices {
		dev := &result.Devices[i]
		sort.SliceStable(dev.Data, func(a, b int) bool {
			return dev.Data[a].Timestamp < dev.Data[b].Timestamp
		})
	}
	return result, nil
}

func parseLocationLine(line string, result *tracing.LocationData, devIndex map[string]int, op string) error {
	rest := line

	tsToken, rest, err := mustToken(rest, ';', op, "TIMESTAMP")
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
	deviceIdx := locationDeviceFor(devIndex, deviceID, &result.Devices)

	var lat, lng, alt float64
	if lat, rest, err = mustFloatToken(rest, ';', op, "LAT"); err != nil {
		return err
	}
	if lng, rest, err = mustFloatToken(rest, ';', op, "LNG"); err != nil {
		return err
	}
	if alt, rest, err = mustFloatToken(rest, ';', op, "ALT"); err != nil {
		return err
	}
	// uncertainty, speed, heading, vspeed: parsed for shape validation, then discarded.
	if _, rest, err = mustFloatToken(rest, ';', op, "UNCERTAINTY"); err != nil {
		return err
	}
	if _, rest, err = mustFloatToken(rest, ';', op, "SPEED"); err != nil {
		return err
	}
	if _, rest, err = mustFloatToken(rest, ';', op, "HEADING"); err != nil {
		return err
	}
	if _, _, err = mustFloatToken(rest, ';', op, "VSPEED"); err != nil {
		return err
	}

	dev := &result.Devices[deviceIdx]
	dev.Data = append(dev.Data, tracing.LocationMeasurement{
		Timestamp: timestamp,
		Lat:       lat,
		Lng:       lng,
		Alt:       alt,
	})
	return nil
}

func mustFloatToken(s string, delim byte, op, context string) (float64, string, error) {
	token, rest, err := mustToken(s, delim, op, context)
	if err != nil {
		return 0, "", err
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, "", errs.New(errs.MalformedInput, op, err)
	}
	return v, rest, nil
}

func locationDeviceFor(devIndex map[string]int, name string, devices *[]tracing.LocationDevice) int {
	if idx, ok := devIndex[name]; ok {
		return idx
	}
	idx := len(*devices)
	devIndex[name] = idx
	*devices = append(*devices, tracing.LocationDevice{Name: name})
	return idx
}
