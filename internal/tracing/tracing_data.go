package tracing

import (
	"math"

	"github.com/comove/tracepair/internal/array2d"
	"github.com/comove/tracepair/internal/errs"
)

// Device holds the dense matrices for a single device: Data has one
// row per time step and DataDimension columns, HasData shares its
// shape and carries 0 wherever the corresponding Data cell was filled
// with a default rather than an observed value.
type Device struct {
	Name     string
	Data     *array2d.Matrix
	HasData  *array2d.ByteMatrix
}

// Data is the normalised (timestamp x dimension) view shared by every
// downstream pipeline stage, built from either signal or location
// traces by Transform. Field names mirror mp::tracing_data.
type Data struct {
	DataDimension int
	MinTimestamp  int64
	MaxTimestamp  int64
	Duration      int64
	Devices       []Device
}

// RowAt returns the data row for device at the given timestamp.
func (d *Data) RowAt(dev *Device, timestamp int64) []float64 {
	return dev.Data.Row(int(timestamp - d.MinTimestamp))
}

// HasDataAt returns the has-data row for device at the given timestamp.
func (d *Data) HasDataAt(dev *Device, timestamp int64) []byte {
	return dev.HasData.Row(int(timestamp - d.MinTimestamp))
}

// UniquePairs returns every unordered pair of device indices (i, j)
// with i < j.
func (d *Data) UniquePairs() [][2]int {
	n := len(d.Devices)
	var pairs [][2]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	return pairs
}

// TransformSignal normalises WiFi signal traces into Data. Missing
// access-point readings at a timestamp are filled with
// defaultSignalStrength (assume maximum distance); a timestamp with no
// readings at all for a device repeats its predecessor's row verbatim
// (assume the device did not move), or takes the default row if it is
// the very first timestamp.
func TransformSignal(sd *SignalData, defaultSignalStrength int) (*Data, error) {
	const op = "tracing.TransformSignal"

	numDevices := len(sd.Devices)
	if numDevices == 0 {
		return nil, errs.New(errs.EmptyInput, op, nil)
	}
	numAPs := len(sd.AccessPoints)
	if numAPs == 0 {
		return nil, errs.New(errs.EmptyInput, op, nil)
	}

	minTS, maxTS, ok := timestampRangeSignal(sd)
	if !ok {
		return nil, errs.New(errs.EmptyInput, op, nil)
	}
	duration := maxTS - minTS + 1

	result := &Data{
		DataDimension: numAPs,
		MinTimestamp:  minTS,
		MaxTimestamp:  maxTS,
		Duration:      duration,
		Devices:       make([]Device, numDevices),
	}

	seen := make([]int, numAPs)
	for i, in := range sd.Devices {
		out := Device{
			Name:    in.Name,
			Data:    array2d.New(int(duration), numAPs),
			HasData: array2d.NewByte(int(duration), numAPs),
		}

		entries := in.Data
		pos := 0
		for ts := minTS; ts <= maxTS; ts++ {
			row := out.Data.Row(int(ts - minTS))
			hasRow := out.HasData.Row(int(ts - minTS))

			haveEntries := false
			for pos < len(entries) && entries[pos].Timestamp == ts {
				e := entries[pos]
				seen[e.AccessPointID]++
				row[e.AccessPointID] += float64(e.SignalStrength)
				haveEntries = true
				pos++
			}

			if !haveEntries {
				if ts > minTS {
					lastRow := out.Data.Row(int(ts - 1 - minTS))
					lastHasRow := out.HasData.Row(int(ts - 1 - minTS))
					copy(row, lastRow)
					copy(hasRow, lastHasRow)
				} else {
					for ap := range row {
						row[ap] = float64(defaultSignalStrength)
					}
				}
			} else {
				for ap := 0; ap < numAPs; ap++ {
					switch seen[ap] {
					case 0:
						row[ap] = float64(defaultSignalStrength)
					default:
						row[ap] /= float64(seen[ap])
						hasRow[ap] = 1
					}
					seen[ap] = 0
				}
			}
		}
		result.Devices[i] = out
	}
	return result, nil
}

func timestampRangeSignal(sd *SignalData) (min, max int64, ok bool) {
	min, max = math.MaxInt64, math.MinInt64
	for _, dev := range sd.Devices {
		for _, e := range dev.Data {
			if e.Timestamp < min {
				min = e.Timestamp
			}
			if e.Timestamp > max {
				max = e.Timestamp
			}
		}
	}
	return min, max, max >= min
}

// TransformLocation normalises GPS traces into Data. Missing fixes at
// a timestamp repeat the predecessor's row, or fill with 0.0 if no
// predecessor exists yet; HasData is always 1 since location traces
// never have a "missing dimension" concept.
func TransformLocation(ld *LocationData) (*Data, error) {
	const op = "tracing.TransformLocation"

	numDevices := len(ld.Devices)
	if numDevices == 0 {
		return nil, errs.New(errs.EmptyInput, op, nil)
	}

	minTS, maxTS, ok := timestampRangeLocation(ld)
	if !ok {
		return nil, errs.New(errs.EmptyInput, op, nil)
	}
	duration := maxTS - minTS + 1
	const dims = 3

	result := &Data{
		DataDimension: dims,
		MinTimestamp:  minTS,
		MaxTimestamp:  maxTS,
		Duration:      duration,
		Devices:       make([]Device, numDevices),
	}

	for i, in := range ld.Devices {
		out := Device{
			Name:    in.Name,
			Data:    array2d.New(int(duration), dims),
			HasData: array2d.NewByteFilled(int(duration), dims, 1),
		}

		entries := in.Data
		pos := 0
		haveLastRow := false
		for ts := minTS; ts <= maxTS; ts++ {
			row := out.Data.Row(int(ts - minTS))

			count := 0
			for pos < len(entries) && entries[pos].Timestamp == ts {
				e := entries[pos]
				row[0] += e.Lat
				row[1] += e.Lng
				row[2] += e.Alt
				count++
				pos++
			}

			switch {
			case count == 0:
				if haveLastRow {
					copy(row, out.Data.Row(int(ts-1-minTS)))
				}
				// else: 0.0 fill, which is the zero value already.
			case count > 1:
				row[0] /= float64(count)
				row[1] /= float64(count)
				row[2] /= float64(count)
			}
			haveLastRow = true
		}
		result.Devices[i] = out
	}
	return result, nil
}

func timestampRangeLocation(ld *LocationData) (min, max int64, ok bool) {
	min, max = math.MaxInt64, math.MinInt64
	for _, dev := range ld.Devices {
		for _, e := range dev.Data {
			if e.Timestamp < min {
				min = e.Timestamp
			}
			if e.Timestamp > max {
				max = e.Timestamp
			}
		}
	}
	return min, max, max >= min
}

// MovingAverage replaces every cell with the average of itself and up
// to n-1 preceding values in the same column, clamping the window at
// the start of the matrix. n must be positive.
func MovingAverage(td *Data, n int) error {
	const op = "tracing.MovingAverage"
	if n <= 0 {
		return errs.Newf(errs.InvalidParameters, op, "n must be positive, got %d", n)
	}

	for i := range td.Devices {
		dev := &td.Devices[i]
		smoothed := array2d.New(int(td.Duration), td.DataDimension)
		rows := int(td.Duration)
		cols := td.DataDimension
		for r := 0; r < rows; r++ {
			firstRow := r - n + 1
			if firstRow < 0 {
				firstRow = 0
			}
			num := float64(r - firstRow + 1)
			out := smoothed.Row(r)
			for c := 0; c < cols; c++ {
				acc := 0.0
				for k := firstRow; k <= r; k++ {
					acc += dev.Data.At(k, c)
				}
				out[c] = acc / num
			}
		}
		dev.Data = smoothed
	}
	return nil
}
