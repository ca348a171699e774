// Package groundtruth holds the labelled per-timestamp device
// groupings used to train and evaluate the co-moving classifier,
// following mp::ground_truth.
package groundtruth

// Relation is the labelled relationship between two devices at a
// timestamp.
type Relation int

const (
	// None means the devices are not co-moving at all.
	None Relation = iota
	// Leading means the first device leads the second (includes co-leading).
	Leading
	// Following means the first device follows the second.
	Following
)

// Device is one device's group membership at a single timestamp.
type Device struct {
	Name  string
	Group int // unique group number at this timestamp
	Order int // order within the group; 0 is the leader
}

// Data holds, for every labelled timestamp, the list of devices and
// their group/order assignment. Two devices are co-moving at a
// timestamp iff their group numbers are equal.
type Data struct {
	Timestamps map[int64][]Device
}

// New returns an empty ground truth.
func New() *Data {
	return &Data{Timestamps: make(map[int64][]Device)}
}

// RelationAt returns the relation between deviceA and deviceB at
// timestamp. When a device name appears more than once at the same
// timestamp, the entry with the highest group number wins, and ties
// prefer the entry appearing later in the timestamp's device list —
// matching mp::ground_truth::relation_at's ambiguity resolution for
// duplicate entries.
func (d *Data) RelationAt(timestamp int64, deviceA, deviceB string) Relation {
	devices, ok := d.Timestamps[timestamp]
	if !ok {
		return None
	}

	find := func(name string) (Device, bool) {
		var found Device
		var ok bool
		for _, dev := range devices {
			if dev.Name != name {
				continue
			}
			if !ok || dev.Group >= found.Group {
				found = dev
				ok = true
			}
		}
		return found, ok
	}

	a, okA := find(deviceA)
	b, okB := find(deviceB)
	if !okA || !okB || a.Group != b.Group {
		return None
	}

	if a.Order <= b.Order {
		return Leading
	}
	return Following
}

// CoMovingAt reports whether deviceA and deviceB are co-moving at timestamp.
func (d *Data) CoMovingAt(timestamp int64, deviceA, deviceB string) bool {
	return d.RelationAt(timestamp, deviceA, deviceB) != None
}
