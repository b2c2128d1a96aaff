package gh

// Repo identifies a repository by owner and name
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

// Board identifies the project board and the fields the tool reads and writes.
// Fields are read by name and written by id.
type Board struct {
	Org                string
	Number             int
	ProjectID          string
	OwnerField         string
	OwnerFieldID       string
	DispositionField   string
	DispositionFieldID string
	ReleaseField       string
	ReleaseFieldID     string
}

// IssueSpec defines all parameters for creating an issue
type IssueSpec struct {
	RepositoryID string
	Title        string
	Body         string
	LabelIDs     []string
	AssigneeIDs  []string
}

// Issue contains the created issue's identity
type Issue struct {
	Number int
	URL    string
}

type pageInfo struct {
	EndCursor   string `json:"endCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

type actor struct {
	Login string `json:"login"`
}

// cursorVar maps the empty cursor to a JSON null
func cursorVar(cursor string) any {
	if cursor == "" {
		return nil
	}
	return cursor
}
