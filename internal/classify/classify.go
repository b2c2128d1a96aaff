// Package classify decides the disposition and suggested owner of a merged
// change from the paths it touched and the people involved.
package classify

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/bjulian5/portsync/internal/config"
	"github.com/bjulian5/portsync/internal/model"
)

// Classifier applies a fixed rule set. It holds no mutable state.
type Classifier struct {
	core       []glob.Glob
	services   []glob.Glob
	ignored    map[string]bool
	buildWatch map[string]bool
	trusted    map[string]bool
}

// New compiles the rule set
func New(rules config.ClassifyConfig) (*Classifier, error) {
	core, err := compileAll(rules.CorePatterns)
	if err != nil {
		return nil, err
	}
	services, err := compileAll(rules.ServicePatterns)
	if err != nil {
		return nil, err
	}
	return &Classifier{
		core:       core,
		services:   services,
		ignored:    toSet(rules.IgnoredPaths),
		buildWatch: toSet(rules.BuildWatchPaths),
		trusted:    toSet(rules.TrustedOwners),
	}, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid path pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func matchAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// Classify returns the first disposition whose rule matches:
// a core path outside the ignore and build/watch sets, then a language
// service path, then a build/watch path. Anything else needs no action.
// It never returns DispositionPorted.
func (c *Classifier) Classify(rec *model.ChangeRecord) model.Disposition {
	for _, path := range rec.Files {
		if c.ignored[path] || c.buildWatch[path] {
			continue
		}
		if matchAny(c.core, path) {
			return model.DispositionNeedsPorting
		}
	}
	for _, path := range rec.Files {
		if matchAny(c.services, path) {
			return model.DispositionLanguageService
		}
	}
	for _, path := range rec.Files {
		if c.buildWatch[path] {
			return model.DispositionBuildWatch
		}
	}
	return model.DispositionNoActionNeeded
}

// IsTrusted reports whether login is in the trusted-owner set
func (c *Classifier) IsTrusted(login string) bool {
	return login != "" && c.trusted[login]
}

// SuggestOwner picks the first trusted person among, in order: the author,
// the assignees, approving reviewers, then any reviewer. Returns "" when no
// trusted person is involved.
func (c *Classifier) SuggestOwner(rec *model.ChangeRecord) string {
	if c.IsTrusted(rec.Author) {
		return rec.Author
	}
	for _, a := range rec.Assignees {
		if c.IsTrusted(a) {
			return a
		}
	}
	for _, r := range rec.Reviews {
		if r.State == model.ReviewApproved && c.IsTrusted(r.Author) {
			return r.Author
		}
	}
	for _, r := range rec.Reviews {
		if c.IsTrusted(r.Author) {
			return r.Author
		}
	}
	return ""
}
