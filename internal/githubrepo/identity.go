// Package githubrepo resolves repository references against the GitHub API:
// identity metadata, recursive tree listings, and concurrent blob content
// fetches. It is the I/O layer in front of the extraction engine.
package githubrepo

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/templar-dev/templar/internal/extract"
)

// RepoRef is a parsed repository reference. Ref is the optional branch, tag,
// or commit override; empty means the repository's default branch.
type RepoRef struct {
	Owner string
	Name  string
	Ref   string
}

func (r RepoRef) String() string {
	if r.Ref != "" {
		return r.Owner + "/" + r.Name + "@" + r.Ref
	}
	return r.Owner + "/" + r.Name
}

var repoSegmentRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ParseRepoRef parses the reference forms the CLI accepts:
//
//	owner/name
//	owner/name@ref
//	https://github.com/owner/name
//	github.com/owner/name
//
// A trailing ".git" or "/" on URL forms is tolerated.
func ParseRepoRef(ref string) (RepoRef, error) {
	raw := strings.TrimSpace(ref)
	if raw == "" {
		return RepoRef{}, fmt.Errorf("empty repository reference: %w", extract.ErrInvalidRepository)
	}

	var branch string
	if at := strings.LastIndex(raw, "@"); at > 0 {
		branch = raw[at+1:]
		raw = raw[:at]
	}

	for _, prefix := range []string{"https://", "http://"} {
		raw = strings.TrimPrefix(raw, prefix)
	}
	raw = strings.TrimPrefix(raw, "github.com/")
	raw = strings.TrimSuffix(strings.TrimSuffix(raw, "/"), ".git")

	parts := strings.Split(raw, "/")
	if len(parts) != 2 {
		return RepoRef{}, fmt.Errorf("reference %q is not owner/name: %w", ref, extract.ErrInvalidRepository)
	}
	owner, name := parts[0], parts[1]
	if !repoSegmentRe.MatchString(owner) || !repoSegmentRe.MatchString(name) {
		return RepoRef{}, fmt.Errorf("reference %q has an invalid owner or name: %w", ref, extract.ErrInvalidRepository)
	}

	return RepoRef{Owner: owner, Name: name, Ref: branch}, nil
}
