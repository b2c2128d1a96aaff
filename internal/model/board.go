package model

// Disposition is the closed set of board statuses describing whether a change
// needs to be ported.
type Disposition string

const (
	DispositionNeedsPorting    Disposition = "Not Ported"
	DispositionPorted          Disposition = "Ported"
	DispositionLanguageService Disposition = "N/A (LS)"
	DispositionBuildWatch      Disposition = "N/A (Build/Watch)"
	DispositionNoActionNeeded  Disposition = "N/A (No Need)"
)

// Dispositions returns every value of the closed set in board order
func Dispositions() []Disposition {
	return []Disposition{
		DispositionNeedsPorting,
		DispositionPorted,
		DispositionLanguageService,
		DispositionBuildWatch,
		DispositionNoActionNeeded,
	}
}

// IsValid reports whether d belongs to the closed set
func (d Disposition) IsValid() bool {
	for _, known := range Dispositions() {
		if d == known {
			return true
		}
	}
	return false
}

// BoardEntry is a card on the project board.
// An empty field means the board holds no value for it.
type BoardEntry struct {
	ID          string
	URL         string // linked change URL
	Owner       string // free-text suggested owner
	Disposition Disposition
	Release     string
}

// IsLinked reports whether the entry points at a change
func (e *BoardEntry) IsLinked() bool {
	return e.URL != ""
}

// Number returns the linked change number, or 0 if there is none
func (e *BoardEntry) Number() int {
	return NumberFromURL(e.URL)
}
