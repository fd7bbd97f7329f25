package plan

// GroupFiles partitions candidates, in discovery order, into consecutive
// groups of frames members each. frames <= 1 yields one singleton group per
// candidate. A trailing group with fewer than frames members is flagged
// Partial; it is never dropped or padded here — policy is applied when the
// unit plans are built.
func GroupFiles(candidates []string, frames int) []Group {
	if frames <= 1 {
		groups := make([]Group, 0, len(candidates))
		for _, c := range candidates {
			groups = append(groups, Group{Members: []string{c}})
		}
		return groups
	}

	var groups []Group
	for start := 0; start < len(candidates); start += frames {
		end := start + frames
		if end > len(candidates) {
			end = len(candidates)
		}
		groups = append(groups, Group{
			Members: candidates[start:end],
			Partial: end-start < frames,
		})
	}
	return groups
}
