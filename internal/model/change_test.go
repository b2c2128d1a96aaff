package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberFromURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected int
	}{
		{
			name:     "pull request URL",
			url:      "https://github.com/microsoft/TypeScript/pull/4821",
			expected: 4821,
		},
		{
			name:     "issue URL returns zero",
			url:      "https://github.com/microsoft/TypeScript/issues/4821",
			expected: 0,
		},
		{
			name:     "trailing slash returns zero",
			url:      "https://github.com/microsoft/TypeScript/pull/4821/",
			expected: 0,
		},
		{
			name:     "empty URL returns zero",
			url:      "",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NumberFromURL(tt.url))
		})
	}
}

func TestChangeRecord_HasIdentity(t *testing.T) {
	assert.True(t, (&ChangeRecord{ID: "PR_1", URL: "https://github.com/o/r/pull/1"}).HasIdentity())
	assert.False(t, (&ChangeRecord{URL: "https://github.com/o/r/pull/1"}).HasIdentity())
	assert.False(t, (&ChangeRecord{ID: "PR_1"}).HasIdentity())
}

func TestChangeRecord_AddFiles(t *testing.T) {
	c := &ChangeRecord{Files: []string{"src/a.ts"}}

	c.AddFiles("src/b.ts", "src/a.ts", "", "src/b.ts", "src/c.ts")

	assert.Equal(t, []string{"src/a.ts", "src/b.ts", "src/c.ts"}, c.Files)
}

func TestDisposition_IsValid(t *testing.T) {
	for _, d := range Dispositions() {
		assert.True(t, d.IsValid(), "expected %q to be valid", d)
	}
	assert.False(t, Disposition("Maybe").IsValid())
	assert.False(t, Disposition("").IsValid())
}

func TestBoardEntry_Number(t *testing.T) {
	linked := &BoardEntry{URL: "https://github.com/microsoft/TypeScript/pull/77"}
	assert.True(t, linked.IsLinked())
	assert.Equal(t, 77, linked.Number())

	unlinked := &BoardEntry{}
	assert.False(t, unlinked.IsLinked())
	assert.Equal(t, 0, unlinked.Number())
}

func TestAncestry_InRelease(t *testing.T) {
	tests := []struct {
		ancestry Ancestry
		want     bool
		name     string
	}{
		{AncestryAncestorOrEqual, true, "ancestor-or-equal"},
		{AncestryDescendant, false, "descendant"},
		{AncestryDiverged, false, "diverged"},
		{AncestryUnknown, false, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ancestry.InRelease())
			assert.Equal(t, tt.name, tt.ancestry.String())
		})
	}
}
