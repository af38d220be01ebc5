package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Ref is a git reference.
type Ref struct {
	Ref    string `json:"ref"`
	Object struct {
		SHA  string `json:"sha"`
		Type string `json:"type"`
	} `json:"object"`
}

// Commit is a git commit object.
type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Tree    struct {
		SHA string `json:"sha"`
	} `json:"tree"`
	Parents []struct {
		SHA string `json:"sha"`
	} `json:"parents"`
}

// Tree is a git tree object.
type Tree struct {
	SHA string `json:"sha"`
}

// TreeEntry describes one entry of a tree creation request. Content creates the blob inline.
type TreeEntry struct {
	Path    string `json:"path"`
	Mode    string `json:"mode"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// CreateTreeRequest creates a tree. An empty BaseTree builds the tree from scratch.
type CreateTreeRequest struct {
	BaseTree string      `json:"base_tree,omitempty"`
	Entries  []TreeEntry `json:"tree"`
}

// Signature is the author of a commit.
type Signature struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

// CreateCommitRequest creates a commit.
type CreateCommitRequest struct {
	Message string     `json:"message"`
	Tree    string     `json:"tree"`
	Parents []string   `json:"parents"`
	Author  *Signature `json:"author,omitempty"`
}

type fileContents struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// Repo scopes git data calls to one repository.
type Repo struct {
	client *Client
	owner  string
	name   string
}

// Repo returns a handle for owner/name.
func (c *Client) Repo(owner, name string) *Repo {
	return &Repo{client: c, owner: owner, name: name}
}

func (r *Repo) path(format string, args ...any) string {
	return fmt.Sprintf("/repos/%s/%s", url.PathEscape(r.owner), url.PathEscape(r.name)) +
		fmt.Sprintf(format, args...)
}

// GetRef resolves a ref such as "heads/main".
func (r *Repo) GetRef(ctx context.Context, ref string) (*Ref, error) {
	var result Ref
	if err := r.client.get(ctx, r.path("/git/ref/%s", escapeRef(ref)), &result); err != nil {
		return nil, fmt.Errorf("getting ref %s in %s/%s: %w", ref, r.owner, r.name, err)
	}

	return &result, nil
}

// GetCommit loads a commit object.
func (r *Repo) GetCommit(ctx context.Context, sha string) (*Commit, error) {
	var result Commit
	if err := r.client.get(ctx, r.path("/git/commits/%s", url.PathEscape(sha)), &result); err != nil {
		return nil, fmt.Errorf("getting commit %s in %s/%s: %w", sha, r.owner, r.name, err)
	}

	return &result, nil
}

// GetFile returns the decoded content of path at commit sha.
func (r *Repo) GetFile(ctx context.Context, sha, path string) (string, error) {
	var result fileContents

	endpoint := r.path("/contents/%s?ref=%s", escapeRef(path), url.QueryEscape(sha))
	if err := r.client.get(ctx, endpoint, &result); err != nil {
		return "", fmt.Errorf("reading %s at %s in %s/%s: %w", path, sha, r.owner, r.name, err)
	}

	if result.Type != "file" || result.Encoding != "base64" {
		return "", fmt.Errorf("reading %s at %s: unsupported %s content with %q encoding",
			path, sha, result.Type, result.Encoding)
	}

	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(result.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decoding %s at %s: %w", path, sha, err)
	}

	return string(data), nil
}

// CreateTree creates a tree object.
func (r *Repo) CreateTree(ctx context.Context, req CreateTreeRequest) (*Tree, error) {
	var result Tree
	if err := r.client.post(ctx, r.path("/git/trees"), req, &result); err != nil {
		return nil, fmt.Errorf("creating tree in %s/%s: %w", r.owner, r.name, err)
	}

	return &result, nil
}

// CreateCommit creates a commit object.
func (r *Repo) CreateCommit(ctx context.Context, req CreateCommitRequest) (*Commit, error) {
	var result Commit
	if err := r.client.post(ctx, r.path("/git/commits"), req, &result); err != nil {
		return nil, fmt.Errorf("creating commit in %s/%s: %w", r.owner, r.name, err)
	}

	return &result, nil
}

// CreateRef creates ref (e.g. "heads/main") pointing at sha.
func (r *Repo) CreateRef(ctx context.Context, ref, sha string) (*Ref, error) {
	var result Ref

	req := struct {
		Ref string `json:"ref"`
		SHA string `json:"sha"`
	}{Ref: "refs/" + ref, SHA: sha}

	if err := r.client.post(ctx, r.path("/git/refs"), req, &result); err != nil {
		return nil, fmt.Errorf("creating ref %s in %s/%s: %w", ref, r.owner, r.name, err)
	}

	return &result, nil
}

// UpdateRef moves ref to sha. Without force GitHub only accepts fast-forwards.
func (r *Repo) UpdateRef(ctx context.Context, ref, sha string, force bool) (*Ref, error) {
	var result Ref

	req := struct {
		SHA   string `json:"sha"`
		Force bool   `json:"force"`
	}{SHA: sha, Force: force}

	if err := r.client.patch(ctx, r.path("/git/refs/%s", escapeRef(ref)), req, &result); err != nil {
		return nil, fmt.Errorf("updating ref %s in %s/%s: %w", ref, r.owner, r.name, err)
	}

	return &result, nil
}

// escapeRef escapes each segment of a slash separated name.
func escapeRef(ref string) string {
	segments := strings.Split(ref, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	return strings.Join(segments, "/")
}
