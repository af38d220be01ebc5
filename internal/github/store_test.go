package github_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/serroba/shorter/internal/github"
	"github.com/serroba/shorter/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRepo is an in-memory git data API with GitHub's fast-forward rule on ref updates.
type fakeRepo struct {
	mu      sync.Mutex
	refs    map[string]string
	commits map[string]fakeCommit
	trees   map[string]map[string]string
	next    int
	tokens  []string
}

type fakeCommit struct {
	tree    string
	parents []string
	message string
	author  github.Signature
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		refs:    make(map[string]string),
		commits: make(map[string]fakeCommit),
		trees:   make(map[string]map[string]string),
	}
}

func (f *fakeRepo) id(prefix string) string {
	f.next++

	return fmt.Sprintf("%s%04d", prefix, f.next)
}

func (f *fakeRepo) isAncestor(ancestor, sha string) bool {
	for sha != "" {
		if sha == ancestor {
			return true
		}

		parents := f.commits[sha].parents
		if len(parents) == 0 {
			return false
		}

		sha = parents[0]
	}

	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func apiError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func (f *fakeRepo) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /repos/acm/links/git/ref/heads/{branch}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		f.tokens = append(f.tokens, r.Header.Get("Authorization"))

		sha, ok := f.refs[r.PathValue("branch")]
		if !ok {
			apiError(w, http.StatusNotFound, "Not Found")

			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"ref":    "refs/heads/" + r.PathValue("branch"),
			"object": map[string]string{"sha": sha, "type": "commit"},
		})
	})

	mux.HandleFunc("GET /repos/acm/links/git/commits/{sha}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		commit, ok := f.commits[r.PathValue("sha")]
		if !ok {
			apiError(w, http.StatusNotFound, "Not Found")

			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"sha":     r.PathValue("sha"),
			"message": commit.message,
			"tree":    map[string]string{"sha": commit.tree},
		})
	})

	mux.HandleFunc("GET /repos/acm/links/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		commit, ok := f.commits[r.URL.Query().Get("ref")]
		if !ok {
			apiError(w, http.StatusNotFound, "No commit found for the ref")

			return
		}

		content, ok := f.trees[commit.tree][r.PathValue("path")]
		if !ok {
			apiError(w, http.StatusNotFound, "Not Found")

			return
		}

		encoded := base64.StdEncoding.EncodeToString([]byte(content))
		writeJSON(w, http.StatusOK, map[string]string{
			"type":     "file",
			"encoding": "base64",
			// GitHub wraps base64 content at 60 characters.
			"content": wrap(encoded, 60),
		})
	})

	mux.HandleFunc("POST /repos/acm/links/git/trees", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		var req github.CreateTreeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiError(w, http.StatusBadRequest, err.Error())

			return
		}

		entries := make(map[string]string)

		if req.BaseTree != "" {
			base, ok := f.trees[req.BaseTree]
			if !ok {
				apiError(w, http.StatusUnprocessableEntity, "base_tree is not a valid tree")

				return
			}

			for p, c := range base {
				entries[p] = c
			}
		}

		for _, e := range req.Entries {
			entries[e.Path] = e.Content
		}

		sha := f.id("tree")
		f.trees[sha] = entries
		writeJSON(w, http.StatusCreated, map[string]string{"sha": sha})
	})

	mux.HandleFunc("POST /repos/acm/links/git/commits", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		var req github.CreateCommitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiError(w, http.StatusBadRequest, err.Error())

			return
		}

		sha := f.id("commit")
		commit := fakeCommit{tree: req.Tree, parents: req.Parents, message: req.Message}

		if req.Author != nil {
			commit.author = *req.Author
		}

		f.commits[sha] = commit
		writeJSON(w, http.StatusCreated, map[string]any{
			"sha":     sha,
			"message": req.Message,
			"tree":    map[string]string{"sha": req.Tree},
		})
	})

	mux.HandleFunc("POST /repos/acm/links/git/refs", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		var req struct {
			Ref string `json:"ref"`
			SHA string `json:"sha"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiError(w, http.StatusBadRequest, err.Error())

			return
		}

		branch := req.Ref[len("refs/heads/"):]
		if _, ok := f.refs[branch]; ok {
			apiError(w, http.StatusUnprocessableEntity, "Reference already exists")

			return
		}

		f.refs[branch] = req.SHA
		writeJSON(w, http.StatusCreated, map[string]any{"ref": req.Ref})
	})

	mux.HandleFunc("PATCH /repos/acm/links/git/refs/heads/{branch}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		var req struct {
			SHA   string `json:"sha"`
			Force bool   `json:"force"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiError(w, http.StatusBadRequest, err.Error())

			return
		}

		branch := r.PathValue("branch")
		if !req.Force && !f.isAncestor(f.refs[branch], req.SHA) {
			apiError(w, http.StatusUnprocessableEntity, "Update is not a fast forward")

			return
		}

		f.refs[branch] = req.SHA
		writeJSON(w, http.StatusOK, map[string]any{"ref": "refs/heads/" + branch})
	})

	return mux
}

func wrap(s string, width int) string {
	var out string

	for len(s) > width {
		out += s[:width] + "\n"
		s = s[width:]
	}

	return out + s
}

func newStore(t *testing.T, repo *fakeRepo) *github.DocumentStore {
	t.Helper()

	server := httptest.NewTLSServer(repo.handler())
	t.Cleanup(server.Close)

	client, err := github.NewClient(github.Config{
		BaseURL:    server.URL,
		Token:      "test-token",
		HTTPClient: server.Client(),
		Logger:     zap.NewNop(),
	})
	require.NoError(t, err)

	return github.NewDocumentStore(client, "acm", "links")
}

func strPtr(s string) *string {
	return &s
}

func TestNewClient(t *testing.T) {
	t.Run("requires https", func(t *testing.T) {
		_, err := github.NewClient(github.Config{BaseURL: "http://api.github.com", Token: "t"})

		require.ErrorIs(t, err, github.ErrInsecureBaseURL)
	})

	t.Run("requires a token", func(t *testing.T) {
		_, err := github.NewClient(github.Config{})

		require.ErrorIs(t, err, github.ErrMissingToken)
	})

	t.Run("defaults to the public api", func(t *testing.T) {
		client, err := github.NewClient(github.Config{Token: "t"})

		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestDocumentStore_ResolveRef(t *testing.T) {
	t.Run("unborn branch is not found", func(t *testing.T) {
		store := newStore(t, newFakeRepo())

		_, err := store.ResolveRef(context.Background(), "main")

		require.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("sends the token", func(t *testing.T) {
		repo := newFakeRepo()
		store := newStore(t, repo)

		_, _ = store.ResolveRef(context.Background(), "main")

		require.Len(t, repo.tokens, 1)
		assert.Equal(t, "Bearer test-token", repo.tokens[0])
	})
}

func TestDocumentStore_Mutations(t *testing.T) {
	repo := newFakeRepo()
	store := newStore(t, repo)
	mutator := shortener.NewMutator(store, shortener.DefaultAuthorDomain, zap.NewNop())
	ctx := context.Background()
	actor := shortener.Actor{Tag: "ethan", Nick: "Ethan"}

	read := func(t *testing.T) string {
		t.Helper()

		tip, err := store.ResolveRef(ctx, "main")
		require.NoError(t, err)

		text, err := store.ReadText(ctx, tip, "shortlinks.json")
		require.NoError(t, err)

		return text
	}

	t.Run("first commit creates the branch", func(t *testing.T) {
		result, err := mutator.Apply(ctx, "main", "shortlinks.json", shortener.MutationRequest{
			Alias:       "x",
			Destination: strPtr("https://example.com"),
			Actor:       actor,
		})

		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, "{\n  \"x\": \"https://example.com\"\n}\n", read(t))

		commit := repo.commits[result.CommitRef]
		assert.Empty(t, commit.parents)
		assert.Equal(t, "update `/x` shortlink", commit.message)
		assert.Equal(t, "Ethan (ethan)", commit.author.Name)
		assert.Equal(t, "ethan@"+shortener.DefaultAuthorDomain, commit.author.Email)
	})

	t.Run("later commits keep the rest of the tree", func(t *testing.T) {
		tip, err := store.ResolveRef(ctx, "main")
		require.NoError(t, err)

		repo.mu.Lock()
		repo.trees[repo.commits[tip].tree]["README.md"] = "links\n"
		repo.mu.Unlock()

		result, err := mutator.Apply(ctx, "main", "shortlinks.json", shortener.MutationRequest{
			Alias:       "y",
			Destination: strPtr("https://example.org"),
			Actor:       actor,
		})
		require.NoError(t, err)

		commit := repo.commits[result.CommitRef]
		assert.Equal(t, []string{tip}, commit.parents)
		assert.Equal(t, "links\n", repo.trees[commit.tree]["README.md"])
		assert.Contains(t, read(t), "\"y\": \"https://example.org\"")
	})

	t.Run("missing file reads as not found", func(t *testing.T) {
		tip, err := store.ResolveRef(ctx, "main")
		require.NoError(t, err)

		_, err = store.ReadText(ctx, tip, "missing.json")

		require.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("stale tip is a ref conflict", func(t *testing.T) {
		tip, err := store.ResolveRef(ctx, "main")
		require.NoError(t, err)

		parent := repo.commits[tip].parents[0]

		tree, err := store.CreateTree(ctx, parent, "shortlinks.json", "{}\n")
		require.NoError(t, err)

		commit, err := store.CreateCommit(ctx, shortener.CommitRequest{Tree: tree, Parent: parent, Message: "stale"})
		require.NoError(t, err)

		err = store.UpdateRef(ctx, "main", parent, commit)

		require.ErrorIs(t, err, shortener.ErrRefConflict)

		after, err := store.ResolveRef(ctx, "main")
		require.NoError(t, err)
		assert.Equal(t, tip, after)
	})

	t.Run("creating an existing branch is a ref conflict", func(t *testing.T) {
		tip, err := store.ResolveRef(ctx, "main")
		require.NoError(t, err)

		err = store.UpdateRef(ctx, "main", "", tip)

		require.ErrorIs(t, err, shortener.ErrRefConflict)
	})
}

func TestIsRefRejected(t *testing.T) {
	assert.True(t, github.IsRefRejected(&github.APIError{StatusCode: 422, Message: "Update is not a fast forward"}))
	assert.True(t, github.IsRefRejected(&github.APIError{StatusCode: 409, Message: "Conflict"}))
	assert.False(t, github.IsRefRejected(&github.APIError{StatusCode: 422, Message: "Object does not exist"}))
	assert.False(t, github.IsRefRejected(nil))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, github.IsNotFound(&github.APIError{StatusCode: 404}))
	assert.True(t, github.IsNotFound(&github.APIError{StatusCode: 409, Message: "Git Repository is empty."}))
	assert.False(t, github.IsNotFound(&github.APIError{StatusCode: 500}))
}
