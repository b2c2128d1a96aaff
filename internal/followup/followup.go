// Package followup files a porting issue for every board entry that still
// needs porting in the oldest release line.
package followup

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/bjulian5/portsync/internal/config"
	"github.com/bjulian5/portsync/internal/gh"
	"github.com/bjulian5/portsync/internal/model"
)

//go:embed body.tmpl
var bodyTemplate string

var body = template.Must(template.New("body").Parse(bodyTemplate))

// Client is the remote surface the filer needs
type Client interface {
	UserLookup
	SearchIssues(ctx context.Context, query string) ([]string, error)
	GetChangeDetail(ctx context.Context, repo gh.Repo, number int) (*model.ChangeDetail, error)
	CreateIssue(ctx context.Context, spec gh.IssueSpec) (*gh.Issue, error)
}

// Options configures one filing pass
type Options struct {
	DryRun bool
	Limit  int // 0 means no cap
}

// Draft is an issue that was, or in dry-run mode would have been, filed
type Draft struct {
	Number int
	Title  string
	Owners []string
	Body   string
	URL    string // set once filed
}

// Result summarizes one filing pass
type Result struct {
	Candidates int
	Existing   int
	Skipped    int
	Created    int
	Previewed  int
	Failed     int
	Drafts     []Draft
}

// Filer files follow-up issues
type Filer struct {
	client Client
	vocab  *config.Vocabulary
	users  *UserResolver
	opts   Options
	logger zerolog.Logger
}

// NewFiler creates a filer
func NewFiler(client Client, vocab *config.Vocabulary, opts Options, logger zerolog.Logger) *Filer {
	return &Filer{
		client: client,
		vocab:  vocab,
		users:  NewUserResolver(client, vocab.FollowUp.KnownUserIDs),
		opts:   opts,
		logger: logger.With().Str("component", "followup").Logger(),
	}
}

// Run walks entries in order. Entries that already have an issue do not count
// against the limit; entries whose detail lookup fails do.
func (f *Filer) Run(ctx context.Context, entries []*model.BoardEntry) (*Result, error) {
	result := &Result{}
	oldest := f.vocab.OldestRelease()
	processed := 0

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if entry.Disposition != model.DispositionNeedsPorting || entry.Release != oldest {
			continue
		}
		result.Candidates++

		number := entry.Number()
		if number == 0 {
			result.Skipped++
			f.logger.Warn().Str("entry", entry.ID).Str("url", entry.URL).Msg("entry has no linked change number")
			continue
		}

		if f.opts.Limit > 0 && processed >= f.opts.Limit {
			f.logger.Info().Int("limit", f.opts.Limit).Msg("limit reached")
			break
		}

		log := f.logger.With().Int("number", number).Str("url", entry.URL).Logger()

		existing, err := f.client.SearchIssues(ctx, f.searchQuery(number))
		if err != nil {
			processed++
			result.Failed++
			log.Error().Err(err).Msg("issue search failed")
			continue
		}
		if len(existing) > 0 {
			result.Existing++
			log.Debug().Str("issue", existing[0]).Msg("issue already exists")
			continue
		}
		processed++

		draft, err := f.draft(ctx, entry, number)
		if err != nil {
			result.Failed++
			log.Error().Err(err).Msg("failed to prepare issue")
			continue
		}

		if f.opts.DryRun {
			result.Previewed++
			result.Drafts = append(result.Drafts, *draft)
			log.Info().Str("title", draft.Title).Strs("owners", draft.Owners).Msg("would create issue")
			continue
		}

		issue, err := f.client.CreateIssue(ctx, gh.IssueSpec{
			RepositoryID: f.vocab.Target.ID,
			Title:        draft.Title,
			Body:         draft.Body,
			LabelIDs:     []string{f.vocab.FollowUp.LabelID},
			AssigneeIDs:  f.resolveOwners(ctx, draft.Owners),
		})
		if err != nil {
			result.Failed++
			log.Error().Err(err).Msg("failed to create issue")
			continue
		}

		draft.URL = issue.URL
		result.Created++
		result.Drafts = append(result.Drafts, *draft)
		log.Info().Int("issue", issue.Number).Str("issue_url", issue.URL).Msg("created issue")
	}

	return result, nil
}

// SearchTerm is the title fragment that links an issue to a change
func SearchTerm(number int) string {
	return fmt.Sprintf("#%d", number)
}

func (f *Filer) searchQuery(number int) string {
	return fmt.Sprintf(`repo:%s/%s is:issue label:"%s" %s in:title`,
		f.vocab.Target.Owner, f.vocab.Target.Name, f.vocab.FollowUp.Label, SearchTerm(number))
}

func (f *Filer) draft(ctx context.Context, entry *model.BoardEntry, number int) (*Draft, error) {
	source := gh.Repo{Owner: f.vocab.Source.Owner, Name: f.vocab.Source.Name}
	detail, err := f.client.GetChangeDetail(ctx, source, number)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = body.Execute(&buf, struct {
		Source      string
		URL         string
		MergeCommit string
	}{
		Source:      source.String(),
		URL:         entry.URL,
		MergeCommit: detail.MergeCommit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render issue body: %w", err)
	}

	return &Draft{
		Number: number,
		Title:  fmt.Sprintf("%s %s: %s", f.vocab.FollowUp.TitlePrefix, SearchTerm(number), detail.Title),
		Owners: f.owners(entry),
		Body:   buf.String(),
	}, nil
}

// owners is the default owner followed by the board's suggested owner
func (f *Filer) owners(entry *model.BoardEntry) []string {
	owners := []string{f.vocab.FollowUp.DefaultOwner}
	suggested := strings.TrimSpace(entry.Owner)
	if suggested != "" && !strings.EqualFold(suggested, f.vocab.FollowUp.DefaultOwner) {
		owners = append(owners, suggested)
	}
	return owners
}

func (f *Filer) resolveOwners(ctx context.Context, owners []string) []string {
	ids := make([]string, 0, len(owners))
	for _, login := range owners {
		id, err := f.users.Resolve(ctx, login)
		if err != nil {
			f.logger.Warn().Err(err).Str("login", login).Msg("dropping unresolvable owner")
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
