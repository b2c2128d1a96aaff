package model

// Ancestry is the relationship of a candidate commit to a release marker
type Ancestry int

const (
	// AncestryUnknown means the comparison could not be made
	AncestryUnknown Ancestry = iota
	// AncestryAncestorOrEqual means the candidate is reachable from the marker
	AncestryAncestorOrEqual
	// AncestryDescendant means the marker is reachable from the candidate
	AncestryDescendant
	// AncestryDiverged means neither is reachable from the other
	AncestryDiverged
)

func (a Ancestry) String() string {
	switch a {
	case AncestryAncestorOrEqual:
		return "ancestor-or-equal"
	case AncestryDescendant:
		return "descendant"
	case AncestryDiverged:
		return "diverged"
	default:
		return "unknown"
	}
}

// InRelease reports whether a candidate with this relationship shipped in the marker's release
func (a Ancestry) InRelease() bool {
	return a == AncestryAncestorOrEqual
}
