package followup

import (
	"context"
	"strings"
)

// UserLookup resolves a login to a node id
type UserLookup interface {
	ResolveUserID(ctx context.Context, login string) (string, error)
}

// UserResolver caches login lookups for the life of the process
type UserResolver struct {
	lookup UserLookup
	ids    map[string]string
}

// NewUserResolver creates a resolver pre-seeded with known ids. Logins are
// compared case-insensitively, as GitHub does.
func NewUserResolver(lookup UserLookup, known map[string]string) *UserResolver {
	ids := make(map[string]string, len(known))
	for login, id := range known {
		ids[strings.ToLower(login)] = id
	}
	return &UserResolver{lookup: lookup, ids: ids}
}

// Resolve returns the node id for login
func (u *UserResolver) Resolve(ctx context.Context, login string) (string, error) {
	key := strings.ToLower(login)
	if id, ok := u.ids[key]; ok {
		return id, nil
	}
	id, err := u.lookup.ResolveUserID(ctx, login)
	if err != nil {
		return "", err
	}
	u.ids[key] = id
	return id, nil
}
