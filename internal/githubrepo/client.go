package githubrepo

import (
	"context"

	"github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

// NewClient returns a GitHub API client. An empty token yields an
// unauthenticated client, which is enough for public repositories but
// subject to the anonymous rate limit.
func NewClient(ctx context.Context, token string) *github.Client {
	if token == "" {
		return github.NewClient(nil)
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return github.NewClient(oauth2.NewClient(ctx, src))
}
