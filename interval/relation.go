package interval

// Relation is the symbolic relation between two intervals, read as "a
// is <relation> b".
type Relation int

const (
	OutsideLeft Relation = iota
	OverlapLeft
	Covered
	Equal
	Covers
	OverlapRight
	OutsideRight
)

var relationNames = map[Relation]string{
	OutsideLeft:  "OUTSIDE_LEFT",
	OverlapLeft:  "OVERLAP_LEFT",
	Covered:      "COVERED",
	Equal:        "EQUAL",
	Covers:       "COVERS",
	OverlapRight: "OVERLAP_RIGHT",
	OutsideRight: "OUTSIDE_RIGHT",
}

func (r Relation) String() string {
	if s, ok := relationNames[r]; ok {
		return s
	}
	return "UNKNOWN"
}

// Matches reports whether the relation implies a non-empty
// intersection. This is the relation set used by axis lookups.
func (r Relation) Matches() bool {
	switch r {
	case OverlapLeft, Covered, Equal, Covers, OverlapRight:
		return true
	}
	return false
}

// Compare returns the relation of i with respect to other.
func (i Interval) Compare(other Interval) Relation {
	al, ah := i.Endpoints()
	bl, bh := other.Endpoints()

	if Cmp(ah, bl) < 0 {
		return OutsideLeft
	}
	if Cmp(al, bh) > 0 {
		return OutsideRight
	}

	start := Cmp(al, bl)
	end := Cmp(ah, bh)
	switch {
	case start == 0 && end == 0:
		return Equal
	case start <= 0 && end >= 0:
		return Covers
	case start >= 0 && end <= 0:
		return Covered
	case start < 0:
		return OverlapLeft
	default:
		return OverlapRight
	}
}
