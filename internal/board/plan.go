// Package board reconciles computed decisions with the project board.
package board

import (
	"fmt"

	"github.com/bjulian5/portsync/internal/model"
)

// MutationKind is one kind of board write
type MutationKind int

const (
	AddEntry MutationKind = iota
	SetOwner
	SetDisposition
	SetRelease
)

func (k MutationKind) String() string {
	switch k {
	case AddEntry:
		return "add"
	case SetOwner:
		return "set-owner"
	case SetDisposition:
		return "set-disposition"
	case SetRelease:
		return "set-release"
	default:
		return fmt.Sprintf("MutationKind(%d)", int(k))
	}
}

// Mutation is a single planned board write
type Mutation struct {
	Kind  MutationKind
	Value string // content id for AddEntry, field value otherwise
}

func (m Mutation) String() string {
	return fmt.Sprintf("%s %q", m.Kind, m.Value)
}

// Decision is what the board should say about one change
type Decision struct {
	Change      *model.ChangeRecord
	Disposition model.Disposition
	Owner       string
	Release     string
}

// Plan returns the writes that bring existing in line with d. A nil existing
// entry plans a new one. Disposition is only written on creation and release
// only when the entry has none; the owner is written whenever it differs.
func Plan(existing *model.BoardEntry, d Decision) []Mutation {
	if existing == nil {
		muts := []Mutation{{Kind: AddEntry, Value: d.Change.ID}}
		if d.Owner != "" {
			muts = append(muts, Mutation{Kind: SetOwner, Value: d.Owner})
		}
		muts = append(muts, Mutation{Kind: SetDisposition, Value: string(d.Disposition)})
		if d.Release != "" {
			muts = append(muts, Mutation{Kind: SetRelease, Value: d.Release})
		}
		return muts
	}

	var muts []Mutation
	if d.Owner != existing.Owner {
		muts = append(muts, Mutation{Kind: SetOwner, Value: d.Owner})
	}
	if existing.Release == "" && d.Release != "" {
		muts = append(muts, Mutation{Kind: SetRelease, Value: d.Release})
	}
	return muts
}
