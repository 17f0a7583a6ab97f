package listview

// Shifts are the pickup time slots offered by the cafeteria.
var Shifts = []string{"11-12", "12-13", "13-14", "14-15"}

// MergeShifts returns the known slots followed by any extra slots reported
// by the server, without duplicates.
func MergeShifts(server []string) []string {
	seen := make(map[string]bool, len(Shifts)+len(server))
	out := make([]string, 0, len(Shifts)+len(server))
	for _, list := range [][]string{Shifts, server} {
		for _, s := range list {
			s = normalizeShift(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
