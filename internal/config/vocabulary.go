package config

import (
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/bjulian5/portsync/internal/model"
)

//go:embed vocabulary.toml
var vocabularyTOML []byte

// Vocabulary holds the identifiers and rules that are fixed at build time
type Vocabulary struct {
	Source   SourceRepo     `toml:"source"`
	Target   TargetRepo     `toml:"target"`
	Board    BoardConfig    `toml:"board"`
	Cache    CacheConfig    `toml:"cache"`
	Classify ClassifyConfig `toml:"classify"`
	Release  ReleaseConfig  `toml:"release"`
	FollowUp FollowUpConfig `toml:"followup"`
}

type SourceRepo struct {
	Owner      string `toml:"owner"`
	Name       string `toml:"name"`
	MainBranch string `toml:"main_branch"`
}

type TargetRepo struct {
	Owner string `toml:"owner"`
	Name  string `toml:"name"`
	ID    string `toml:"id"`
}

type BoardConfig struct {
	Org         string             `toml:"org"`
	Number      int                `toml:"number"`
	ProjectID   string             `toml:"project_id"`
	Owner       FieldConfig        `toml:"owner"`
	Disposition DispositionField   `toml:"disposition"`
	Release     ReleaseFieldConfig `toml:"release"`
}

type FieldConfig struct {
	FieldID   string `toml:"field_id"`
	FieldName string `toml:"field_name"`
}

type DispositionField struct {
	FieldID   string            `toml:"field_id"`
	FieldName string            `toml:"field_name"`
	Options   map[string]string `toml:"options"` // board label -> option id
}

type ReleaseFieldConfig struct {
	FieldID   string         `toml:"field_id"`
	FieldName string         `toml:"field_name"`
	Options   []SelectOption `toml:"options"` // oldest first
}

type SelectOption struct {
	Name string `toml:"name"`
	ID   string `toml:"id"`
}

type CacheConfig struct {
	Version          int       `toml:"version"`
	InitialWatermark time.Time `toml:"initial_watermark"`
}

type ClassifyConfig struct {
	TrustedOwners   []string `toml:"trusted_owners"`
	CorePatterns    []string `toml:"core_patterns"`
	IgnoredPaths    []string `toml:"ignored_paths"`
	BuildWatchPaths []string `toml:"build_watch_paths"`
	ServicePatterns []string `toml:"service_patterns"`
}

type ReleaseConfig struct {
	Markers []ReleaseMarker `toml:"markers"` // oldest first
}

type ReleaseMarker struct {
	Ref   string `toml:"ref"`
	Label string `toml:"label"`
}

type FollowUpConfig struct {
	TitlePrefix  string            `toml:"title_prefix"`
	Label        string            `toml:"label"`
	LabelID      string            `toml:"label_id"`
	DefaultOwner string            `toml:"default_owner"`
	KnownUserIDs map[string]string `toml:"known_user_ids"` // lowercase login -> node id
}

// LoadVocabulary decodes the vocabulary compiled into the binary
func LoadVocabulary() (*Vocabulary, error) {
	return ParseVocabulary(vocabularyTOML)
}

// ParseVocabulary decodes and validates a vocabulary document
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := toml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

// Validate checks that every closed-set value can be addressed on the board
func (v *Vocabulary) Validate() error {
	var errs []error

	if v.Source.Owner == "" || v.Source.Name == "" || v.Source.MainBranch == "" {
		errs = append(errs, errors.New("source repository owner, name and main_branch are required"))
	}
	if v.Board.ProjectID == "" || v.Board.Number <= 0 {
		errs = append(errs, errors.New("board project_id and number are required"))
	}
	fields := []struct{ id, name string }{
		{v.Board.Owner.FieldID, v.Board.Owner.FieldName},
		{v.Board.Disposition.FieldID, v.Board.Disposition.FieldName},
		{v.Board.Release.FieldID, v.Board.Release.FieldName},
	}
	for _, f := range fields {
		if f.id == "" || f.name == "" {
			errs = append(errs, errors.New("board owner, disposition and release fields need a field_id and a field_name"))
			break
		}
	}
	if v.Cache.Version <= 0 {
		errs = append(errs, errors.New("cache version must be positive"))
	}

	for label := range v.Board.Disposition.Options {
		if !model.Disposition(label).IsValid() {
			errs = append(errs, fmt.Errorf("unknown disposition option %q", label))
		}
	}
	for _, d := range model.Dispositions() {
		if v.Board.Disposition.Options[string(d)] == "" {
			errs = append(errs, fmt.Errorf("disposition %q has no option id", d))
		}
	}

	if len(v.Board.Release.Options) == 0 {
		errs = append(errs, errors.New("at least one release option is required"))
	}
	seen := make(map[string]bool)
	for _, opt := range v.Board.Release.Options {
		if opt.Name == "" || opt.ID == "" {
			errs = append(errs, errors.New("release options need a name and an id"))
			continue
		}
		if seen[opt.Name] {
			errs = append(errs, fmt.Errorf("duplicate release option %q", opt.Name))
		}
		seen[opt.Name] = true
	}
	for _, m := range v.Release.Markers {
		if m.Ref == "" {
			errs = append(errs, errors.New("release markers need a ref"))
		}
		if !seen[m.Label] {
			errs = append(errs, fmt.Errorf("release marker %q names unknown release %q", m.Ref, m.Label))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid vocabulary: %w", errors.Join(errs...))
	}
	return nil
}

// DispositionOptionID returns the single-select option id for d
func (v *Vocabulary) DispositionOptionID(d model.Disposition) (string, bool) {
	id, ok := v.Board.Disposition.Options[string(d)]
	return id, ok && id != ""
}

// ReleaseOptionID returns the single-select option id for a release label
func (v *Vocabulary) ReleaseOptionID(label string) (string, bool) {
	for _, opt := range v.Board.Release.Options {
		if opt.Name == label {
			return opt.ID, true
		}
	}
	return "", false
}

// ReleaseLabels returns the release labels, oldest first
func (v *Vocabulary) ReleaseLabels() []string {
	labels := make([]string, 0, len(v.Board.Release.Options))
	for _, opt := range v.Board.Release.Options {
		labels = append(labels, opt.Name)
	}
	return labels
}

// OldestRelease returns the first release label, or "" when none is configured
func (v *Vocabulary) OldestRelease() string {
	if len(v.Board.Release.Options) == 0 {
		return ""
	}
	return v.Board.Release.Options[0].Name
}
