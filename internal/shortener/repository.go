package shortener

import (
	"context"
	"time"
)

// Author is the authorial metadata attached to a commit.
type Author struct {
	Name  string
	Email string
	Date  time.Time
}

// CommitRequest describes a commit to create on top of Parent.
// An empty Parent creates a root commit.
type CommitRequest struct {
	Tree    string
	Parent  string
	Message string
	Author  Author
}

// DocumentStore is the version-controlled repository holding the shortlink document.
// Every call is a separate round trip and may fail independently.
type DocumentStore interface {
	// ResolveRef returns the commit a ref points at, or ErrNotFound for an unborn branch.
	ResolveRef(ctx context.Context, ref string) (string, error)

	// ReadText returns the content of path at a commit, or ErrNotFound.
	ReadText(ctx context.Context, commit, path string) (string, error)

	// CreateTree writes a tree equal to the base commit's tree with path replaced by content.
	// An empty base commit starts from an empty tree.
	CreateTree(ctx context.Context, baseCommit, path, content string) (string, error)

	// CreateCommit writes a commit object and returns its hash.
	CreateCommit(ctx context.Context, req CommitRequest) (string, error)

	// UpdateRef moves ref from expectedOld to newCommit, failing with ErrRefConflict
	// if the ref no longer points at expectedOld. An empty expectedOld creates the ref.
	UpdateRef(ctx context.Context, ref, expectedOld, newCommit string) error
}

// Applier runs the mutation protocol against a document.
type Applier interface {
	Apply(ctx context.Context, baseRef, path string, req MutationRequest) (*MutationResult, error)
}
