package tracing

// BadAccessPoints returns the indices of access points whose average
// signal strength across every device falls below minimumAverage. An
// access point with zero observations counts as bad, matching
// mp::bad_access_points.
func BadAccessPoints(sd *SignalData, minimumAverage float64) []int {
	numAPs := len(sd.AccessPoints)
	count := make([]int, numAPs)
	total := make([]float64, numAPs)

	for _, dev := range sd.Devices {
		for _, m := range dev.Data {
			total[m.AccessPointID] += float64(m.SignalStrength)
			count[m.AccessPointID]++
		}
	}

	var bad []int
	for ap := 0; ap < numAPs; ap++ {
		if count[ap] == 0 {
			bad = append(bad, ap)
			continue
		}
		if total[ap]/float64(count[ap]) < minimumAverage {
			bad = append(bad, ap)
		}
	}
	return bad
}

// RemoveAccessPoints drops every measurement referencing one of
// accessPointIDs, purges those access points from the name table, and
// renumbers the surviving access points densely so that remaining
// measurements' AccessPointID fields stay valid indices into the new
// table. Mirrors mp::remove_access_points.
func RemoveAccessPoints(sd *SignalData, accessPointIDs []int) {
	if len(accessPointIDs) == 0 {
		return
	}

	removed := make(map[int]bool, len(accessPointIDs))
	for _, id := range accessPointIDs {
		removed[id] = true
	}

	numAPs := len(sd.AccessPoints)
	newAccessPoints := make([]string, 0, numAPs)
	indexMap := make(map[int]int, numAPs)
	for ap := 0; ap < numAPs; ap++ {
		if removed[ap] {
			continue
		}
		indexMap[ap] = len(newAccessPoints)
		newAccessPoints = append(newAccessPoints, sd.AccessPoints[ap])
	}
	sd.AccessPoints = newAccessPoints

	for i := range sd.Devices {
		dev := &sd.Devices[i]
		filtered := dev.Data[:0]
		for _, m := range dev.Data {
			if removed[m.AccessPointID] {
				continue
			}
			m.AccessPointID = indexMap[m.AccessPointID]
			filtered = append(filtered, m)
		}
		dev.Data = filtered
	}
}
