package githubrepo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templar-dev/templar/internal/extract"
)

// Test Plan:
// - All accepted reference forms parse to the same owner/name
// - @ref suffix populates Ref
// - Malformed references fail with the invalid-repository sentinel

func TestParseRepoRef(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want RepoRef
	}{
		{"vercel/next.js", RepoRef{Owner: "vercel", Name: "next.js"}},
		{"vercel/next.js@canary", RepoRef{Owner: "vercel", Name: "next.js", Ref: "canary"}},
		{"https://github.com/vercel/next.js", RepoRef{Owner: "vercel", Name: "next.js"}},
		{"https://github.com/vercel/next.js.git", RepoRef{Owner: "vercel", Name: "next.js"}},
		{"github.com/vercel/next.js/", RepoRef{Owner: "vercel", Name: "next.js"}},
		{"  octo-org/my_repo  ", RepoRef{Owner: "octo-org", Name: "my_repo"}},
	}
	for _, tc := range cases {
		got, err := ParseRepoRef(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseRepoRef_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"",
		"just-a-name",
		"too/many/segments",
		"owner/name with space",
		"owner/",
	} {
		_, err := ParseRepoRef(in)
		require.Error(t, err, "input %q", in)
		assert.ErrorIs(t, err, extract.ErrInvalidRepository, "input %q", in)
	}
}

func TestRepoRefString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a/b", RepoRef{Owner: "a", Name: "b"}.String())
	assert.Equal(t, "a/b@main", RepoRef{Owner: "a", Name: "b", Ref: "main"}.String())
}
