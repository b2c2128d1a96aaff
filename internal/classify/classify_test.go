package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjulian5/portsync/internal/config"
	"github.com/bjulian5/portsync/internal/model"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	vocab, err := config.LoadVocabulary()
	require.NoError(t, err)
	c, err := New(vocab.Classify)
	require.NoError(t, err)
	return c
}

func TestClassifier_Classify(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name  string
		files []string
		want  model.Disposition
	}{
		{
			name:  "core path",
			files: []string{"src/compiler/checker.ts"},
			want:  model.DispositionNeedsPorting,
		},
		{
			name:  "nested core path",
			files: []string{"src/lib/dom.generated.d.ts", "README.md"},
			want:  model.DispositionNeedsPorting,
		},
		{
			name:  "build/watch path under core wins over core",
			files: []string{"src/compiler/watch.ts"},
			want:  model.DispositionBuildWatch,
		},
		{
			name:  "build/watch plus another core path still needs porting",
			files: []string{"src/compiler/watch.ts", "src/compiler/parser.ts"},
			want:  model.DispositionNeedsPorting,
		},
		{
			name:  "ignored core path",
			files: []string{"src/compiler/types.ts"},
			want:  model.DispositionNoActionNeeded,
		},
		{
			name:  "language service",
			files: []string{"src/services/completions.ts", "tests/cases/fourslash/a.ts"},
			want:  model.DispositionLanguageService,
		},
		{
			name:  "core outranks language service",
			files: []string{"src/services/completions.ts", "src/tsc/tsc.ts"},
			want:  model.DispositionNeedsPorting,
		},
		{
			name:  "language service outranks build/watch",
			files: []string{"src/compiler/builder.ts", "src/tsserver/server.ts"},
			want:  model.DispositionLanguageService,
		},
		{
			name:  "typings installer core is not confused with its prefix sibling",
			files: []string{"src/typingsInstallerCore/typingsInstaller.ts"},
			want:  model.DispositionLanguageService,
		},
		{
			name:  "prefix match requires a directory boundary",
			files: []string{"src/compilerx/checker.ts"},
			want:  model.DispositionNoActionNeeded,
		},
		{
			name:  "no files",
			files: nil,
			want:  model.DispositionNoActionNeeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(&model.ChangeRecord{Files: tt.files})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifier_SuggestOwner(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		name string
		rec  model.ChangeRecord
		want string
	}{
		{
			name: "trusted author",
			rec:  model.ChangeRecord{Author: "jakebailey", Assignees: []string{"weswigham"}},
			want: "jakebailey",
		},
		{
			name: "assignee before approving reviewer",
			rec: model.ChangeRecord{
				Author:    "outsider",
				Assignees: []string{"someone", "gabritto"},
				Reviews:   []model.Review{{Author: "sandersn", State: model.ReviewApproved}},
			},
			want: "gabritto",
		},
		{
			name: "approving reviewer before earlier commenter",
			rec: model.ChangeRecord{
				Author: "outsider",
				Reviews: []model.Review{
					{Author: "weswigham", State: model.ReviewCommented},
					{Author: "andrewbranch", State: model.ReviewApproved},
				},
			},
			want: "andrewbranch",
		},
		{
			name: "any review from a member",
			rec: model.ChangeRecord{
				Author:  "outsider",
				Reviews: []model.Review{{Author: "iisaduan", State: model.ReviewChangesRequested}},
			},
			want: "iisaduan",
		},
		{
			name: "membership is case sensitive",
			rec:  model.ChangeRecord{Author: "JakeBailey"},
			want: "",
		},
		{
			name: "nobody trusted",
			rec: model.ChangeRecord{
				Author:    "outsider",
				Assignees: []string{"other"},
				Reviews:   []model.Review{{Author: "third", State: model.ReviewApproved}},
			},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.SuggestOwner(&tt.rec))
		})
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New(config.ClassifyConfig{CorePatterns: []string{"src/[compiler"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid path pattern")
}
