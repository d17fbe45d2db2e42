package domain

// Score decides locally whether the selected option indices answer the
// question correctly. The result is the authoritative verdict; the model is
// never asked to judge.
//
// For radio-only questions exactly one index must be selected and it must
// be correct. Otherwise the selected set must equal the correct set.
func Score(options []Option, selected []int) bool {
	correct := make(map[int]struct{})
	for _, i := range CorrectIndices(options) {
		correct[i] = struct{}{}
	}

	if SingleSelect(options) {
		if len(selected) != 1 {
			return false
		}
		_, ok := correct[selected[0]]
		return ok
	}

	picked := make(map[int]struct{}, len(selected))
	for _, i := range selected {
		if _, ok := correct[i]; !ok {
			return false
		}
		picked[i] = struct{}{}
	}
	return len(picked) == len(correct)
}
