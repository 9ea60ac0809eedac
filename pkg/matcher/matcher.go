package matcher

import (
	"math"
	"regexp"
	"strings"
	"sync"

	ac "github.com/petar-dambovaliev/aho-corasick"

	"mercator-hq/paramengine/pkg/types"
)

// Wildcard is the literal table value that matches any input.
const Wildcard = "*"

// WildcardRank is the rank of the wildcard pattern; every other rank is higher.
var WildcardRank = math.Inf(-1)

// Matcher decides whether an input satisfies a stored pattern. Implementations
// must be pure and safe for concurrent use.
type Matcher interface {
	// Matches reports whether input satisfies pattern. Both are canonical
	// texts; t is the level type and may be nil for untyped levels.
	Matches(pattern, input string, t types.Type) bool
}

// Ranker is implemented by matchers that can order simultaneously matching
// patterns. Higher ranks are more specific.
type Ranker interface {
	Rank(pattern string, t types.Type) float64
}

// Kind identifies the built-in matcher variants.
type Kind int

const (
	KindCustom Kind = iota
	KindEquals
	KindAny
	KindBetween
	KindRegex
	KindSet
	KindContains
)

// Rank returns the rank of pattern under m, falling back to zero for matchers
// that do not implement Ranker.
func Rank(m Matcher, pattern string, t types.Type) float64 {
	if pattern == Wildcard {
		return WildcardRank
	}
	if r, ok := m.(Ranker); ok {
		return r.Rank(pattern, t)
	}
	return 0
}

// KindOf returns the variant of a built-in matcher, or KindCustom.
func KindOf(m Matcher) Kind {
	if b, ok := m.(*builtin); ok {
		return b.kind
	}
	return KindCustom
}

// IsExact reports whether m only ever matches equal values, which allows the
// index to resolve it with a map lookup. A nil matcher is exact.
func IsExact(m Matcher) bool {
	return m == nil || KindOf(m) == KindEquals
}

// builtin implements the closed set of built-in matchers, dispatching on kind.
type builtin struct {
	kind Kind

	// between
	lowerInclusive bool
	upperInclusive bool

	// in, contains
	separator       string
	caseInsensitive bool

	// compiled pattern caches; patterns are immutable table contents so the
	// caches only grow with the number of distinct patterns
	regexps  sync.Map // pattern -> *regexp.Regexp (nil when invalid)
	automata sync.Map // pattern -> *automaton
}

// Equals matches equal values.
func Equals() Matcher { return &builtin{kind: KindEquals} }

// Any matches every input.
func Any() Matcher { return &builtin{kind: KindAny} }

// Between matches inputs inside a lo:hi range with the given bound inclusivity.
func Between(lowerInclusive, upperInclusive bool) Matcher {
	return &builtin{kind: KindBetween, lowerInclusive: lowerInclusive, upperInclusive: upperInclusive}
}

// Regex matches inputs fully matched by the pattern expression.
func Regex() Matcher { return &builtin{kind: KindRegex} }

// Set matches inputs equal to one element of a separator-delimited pattern.
func Set(separator string) Matcher {
	if separator == "" {
		separator = ","
	}
	return &builtin{kind: KindSet, separator: separator}
}

// Contains matches inputs containing any of the |-separated pattern substrings.
func Contains(caseInsensitive bool) Matcher {
	return &builtin{kind: KindContains, separator: "|", caseInsensitive: caseInsensitive}
}

func (m *builtin) Matches(pattern, input string, t types.Type) bool {
	switch m.kind {
	case KindAny:
		return true
	case KindEquals:
		return equalValues(pattern, input, t)
	case KindBetween:
		return m.matchBetween(pattern, input, t)
	case KindRegex:
		re := m.regexp(pattern)
		return re != nil && re.MatchString(input)
	case KindSet:
		for _, elem := range strings.Split(pattern, m.separator) {
			if equalValues(strings.TrimSpace(elem), input, t) {
				return true
			}
		}
		return false
	case KindContains:
		return m.automaton(pattern).contains(input)
	default:
		return false
	}
}

func (m *builtin) Rank(pattern string, t types.Type) float64 {
	switch m.kind {
	case KindAny:
		return WildcardRank
	case KindBetween:
		return m.rankBetween(pattern, t)
	case KindSet:
		return -float64(len(strings.Split(pattern, m.separator)))
	case KindContains:
		return -float64(len(strings.Split(pattern, m.separator)))
	default:
		return 0
	}
}

// equalValues compares texts, falling back to typed equality so that
// differently spelled values of the same logical value match.
func equalValues(pattern, input string, t types.Type) bool {
	if pattern == input {
		return true
	}
	if t == nil {
		return false
	}
	pv, err := t.Parse(pattern)
	if err != nil {
		return false
	}
	iv, err := t.Parse(input)
	if err != nil {
		return false
	}
	return !pv.IsNull() && types.Equal(pv, iv)
}

func (m *builtin) matchBetween(pattern, input string, t types.Type) bool {
	lo, hi, ok := splitRange(pattern)
	if !ok {
		return false
	}
	if t == nil {
		t = types.String
	}

	value, err := t.Parse(input)
	if err != nil || value.IsNull() {
		return false
	}

	if lo != "" {
		bound, err := t.Parse(lo)
		if err != nil {
			return false
		}
		c, err := types.Compare(value, bound)
		if err != nil || c < 0 || (c == 0 && !m.lowerInclusive) {
			return false
		}
	}

	if hi != "" {
		bound, err := t.Parse(hi)
		if err != nil {
			return false
		}
		c, err := types.Compare(value, bound)
		if err != nil || c > 0 || (c == 0 && !m.upperInclusive) {
			return false
		}
	}

	return true
}

// rankBetween ranks narrower ranges higher. Open ranges rank just above the wildcard.
func (m *builtin) rankBetween(pattern string, t types.Type) float64 {
	lo, hi, ok := splitRange(pattern)
	if !ok || lo == "" || hi == "" || t == nil {
		return -math.MaxFloat64
	}
	lv, err := t.Parse(lo)
	if err != nil {
		return -math.MaxFloat64
	}
	hv, err := t.Parse(hi)
	if err != nil {
		return -math.MaxFloat64
	}

	if lf, ok := lv.AsFloat64(); ok {
		if hf, ok := hv.AsFloat64(); ok {
			return -(hf - lf)
		}
	}
	if lt, ok := lv.AsTime(); ok {
		if ht, ok := hv.AsTime(); ok {
			return -ht.Sub(lt).Hours()
		}
	}
	return 0
}

// splitRange splits "lo:hi" (or "lo,hi") into bounds; "*" bounds become empty.
func splitRange(pattern string) (string, string, bool) {
	idx := strings.IndexByte(pattern, ':')
	if idx < 0 {
		idx = strings.IndexByte(pattern, ',')
	}
	if idx < 0 {
		return "", "", false
	}
	lo := strings.TrimSpace(pattern[:idx])
	hi := strings.TrimSpace(pattern[idx+1:])
	if lo == Wildcard {
		lo = ""
	}
	if hi == Wildcard {
		hi = ""
	}
	return lo, hi, true
}

func (m *builtin) regexp(pattern string) *regexp.Regexp {
	if cached, ok := m.regexps.Load(pattern); ok {
		return cached.(*regexp.Regexp)
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		re = nil
	}
	actual, _ := m.regexps.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp)
}

// automaton wraps an Aho-Corasick automaton; searches are serialized because
// the automaton keeps per-search state.
type automaton struct {
	mu    sync.Mutex
	ac    ac.AhoCorasick
	empty bool
}

func (a *automaton) contains(input string) bool {
	if a.empty {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.ac.FindAll(input)) > 0
}

func (m *builtin) automaton(pattern string) *automaton {
	if cached, ok := m.automata.Load(pattern); ok {
		return cached.(*automaton)
	}

	var needles []string
	for _, needle := range strings.Split(pattern, m.separator) {
		if needle != "" {
			needles = append(needles, needle)
		}
	}

	a := &automaton{empty: len(needles) == 0}
	if !a.empty {
		builder := ac.NewAhoCorasickBuilder(ac.Opts{
			AsciiCaseInsensitive: m.caseInsensitive,
			MatchKind:            ac.LeftMostLongestMatch,
		})
		a.ac = builder.Build(needles)
	}

	actual, _ := m.automata.LoadOrStore(pattern, a)
	return actual.(*automaton)
}
