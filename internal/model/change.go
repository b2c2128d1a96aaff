package model

import (
	"regexp"
	"strconv"
	"time"
)

var changeNumberRegex = regexp.MustCompile(`/pull/(\d+)$`)

// ReviewState mirrors the review states reported by GitHub
type ReviewState string

const (
	ReviewApproved         ReviewState = "APPROVED"
	ReviewChangesRequested ReviewState = "CHANGES_REQUESTED"
	ReviewCommented        ReviewState = "COMMENTED"
	ReviewDismissed        ReviewState = "DISMISSED"
	ReviewPending          ReviewState = "PENDING"
)

// Review is a single review outcome on a merged change
type Review struct {
	Author string      `json:"author"`
	State  ReviewState `json:"state"`
}

// ChangeRecord is a merged pull request as tracked in the local cache.
type ChangeRecord struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	MergedAt    time.Time `json:"merged_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	BaseRefName string    `json:"base_ref_name"`
	MergeCommit string    `json:"merge_commit"`
	Files       []string  `json:"files"`
	Author      string    `json:"author"`
	Assignees   []string  `json:"assignees"`
	Reviews     []Review  `json:"reviews"`
}

// HasIdentity reports whether the record carries the fields required to track it
func (c *ChangeRecord) HasIdentity() bool {
	return c.ID != "" && c.URL != ""
}

// Number returns the pull request number embedded in the URL, or 0 if absent
func (c *ChangeRecord) Number() int {
	return NumberFromURL(c.URL)
}

// AddFiles appends paths that are not already present, preserving order
func (c *ChangeRecord) AddFiles(paths ...string) {
	seen := make(map[string]bool, len(c.Files))
	for _, p := range c.Files {
		seen[p] = true
	}
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		c.Files = append(c.Files, p)
	}
}

// NumberFromURL extracts the trailing /pull/<n> number from a change URL.
// Returns 0 when the URL does not end with a pull request number.
func NumberFromURL(url string) int {
	matches := changeNumberRegex.FindStringSubmatch(url)
	if len(matches) != 2 {
		return 0
	}
	n, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0
	}
	return n
}

// ChangeDetail is the subset of a change needed to file a follow-up item
type ChangeDetail struct {
	Number      int
	Title       string
	Body        string
	MergeCommit string
}
