package index

// Extraction selects how hits are turned into the final row sequence.
type Extraction uint8

const (
	// ExtractAll keeps the rows of every hit in visitation order.
	ExtractAll Extraction = iota
	// ExtractBest keeps only the hits with the highest rank vector, compared
	// depth by depth, in visitation order.
	ExtractBest
)

// String returns the policy name.
func (e Extraction) String() string {
	switch e {
	case ExtractAll:
		return "all"
	case ExtractBest:
		return "best"
	default:
		return "unknown"
	}
}

// ParseExtraction parses "all" or "best".
func ParseExtraction(s string) (Extraction, bool) {
	switch s {
	case "", "all":
		return ExtractAll, true
	case "best":
		return ExtractBest, true
	default:
		return ExtractAll, false
	}
}

// Extract flattens hits into rows according to policy. Duplicates are kept.
func Extract[T any](hits []Hit[T], policy Extraction) []T {
	if policy == ExtractBest {
		hits = best(hits)
	}

	n := 0
	for _, h := range hits {
		n += len(h.Leaves)
	}
	if n == 0 {
		return nil
	}

	rows := make([]T, 0, n)
	for _, h := range hits {
		rows = append(rows, h.Leaves...)
	}
	return rows
}

func best[T any](hits []Hit[T]) []Hit[T] {
	var out []Hit[T]
	for _, h := range hits {
		if len(out) == 0 {
			out = append(out, h)
			continue
		}
		switch c := compareRanks(h.Ranks, out[0].Ranks); {
		case c > 0:
			out = append(out[:0], h)
		case c == 0:
			out = append(out, h)
		}
	}
	return out
}

func compareRanks(a, b []float64) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] > b[i]:
			return 1
		case a[i] < b[i]:
			return -1
		}
	}
	return len(a) - len(b)
}
