package rsvp

// ORP is the fixed-point split of a word around its optimal recognition point.
type ORP struct {
	Prefix string
	Pivot  string
	Suffix string
}

// String reassembles the word.
func (o ORP) String() string {
	return o.Prefix + o.Pivot + o.Suffix
}

// PivotIndex returns the 0-based pivot position for a word of the given
// character count.
func PivotIndex(length int) int {
	switch {
	case length <= 1:
		return 0
	case length <= 5:
		return 1
	case length <= 9:
		return 2
	case length <= 13:
		return 3
	default:
		return 4
	}
}

// ComputeORP splits token into prefix, pivot character and suffix.
// Lengths are counted in runes.
func ComputeORP(token string) ORP {
	if token == "" {
		return ORP{}
	}
	runes := []rune(token)
	idx := PivotIndex(len(runes))
	return ORP{
		Prefix: string(runes[:idx]),
		Pivot:  string(runes[idx]),
		Suffix: string(runes[idx+1:]),
	}
}
