package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/serroba/shorter/internal/shortener"
)

const fileMode = "100644"

// DocumentStore implements shortener.DocumentStore on a GitHub repository through the
// git data API.
//
// GitHub has no compare-and-swap on refs. UpdateRef relies on non-forced updates being
// restricted to fast-forwards: the new commit's parent is the expected tip, so the update
// is refused whenever the branch has advanced past it.
type DocumentStore struct {
	repo *Repo
}

// NewDocumentStore creates a document store for owner/name.
func NewDocumentStore(client *Client, owner, name string) *DocumentStore {
	return &DocumentStore{repo: client.Repo(owner, name)}
}

func (s *DocumentStore) ResolveRef(ctx context.Context, ref string) (string, error) {
	result, err := s.repo.GetRef(ctx, branchRef(ref))
	if err != nil {
		return "", translate(err)
	}

	return result.Object.SHA, nil
}

func (s *DocumentStore) ReadText(ctx context.Context, commit, path string) (string, error) {
	text, err := s.repo.GetFile(ctx, commit, path)
	if err != nil {
		return "", translate(err)
	}

	return text, nil
}

func (s *DocumentStore) CreateTree(ctx context.Context, baseCommit, path, content string) (string, error) {
	req := CreateTreeRequest{
		Entries: []TreeEntry{{Path: path, Mode: fileMode, Type: "blob", Content: content}},
	}

	if baseCommit != "" {
		commit, err := s.repo.GetCommit(ctx, baseCommit)
		if err != nil {
			return "", translate(err)
		}

		req.BaseTree = commit.Tree.SHA
	}

	tree, err := s.repo.CreateTree(ctx, req)
	if err != nil {
		return "", err
	}

	return tree.SHA, nil
}

func (s *DocumentStore) CreateCommit(ctx context.Context, req shortener.CommitRequest) (string, error) {
	parents := []string{}
	if req.Parent != "" {
		parents = append(parents, req.Parent)
	}

	commit, err := s.repo.CreateCommit(ctx, CreateCommitRequest{
		Message: req.Message,
		Tree:    req.Tree,
		Parents: parents,
		Author: &Signature{
			Name:  req.Author.Name,
			Email: req.Author.Email,
			Date:  req.Author.Date,
		},
	})
	if err != nil {
		return "", err
	}

	return commit.SHA, nil
}

func (s *DocumentStore) UpdateRef(ctx context.Context, ref, expectedOld, newCommit string) error {
	var err error

	if expectedOld == "" {
		_, err = s.repo.CreateRef(ctx, branchRef(ref), newCommit)
	} else {
		_, err = s.repo.UpdateRef(ctx, branchRef(ref), newCommit, false)
	}

	if IsRefRejected(err) {
		return fmt.Errorf("%w: %w", shortener.ErrRefConflict, err)
	}

	return err
}

// branchRef maps a branch name to the "heads/<branch>" form the API expects.
func branchRef(ref string) string {
	ref = strings.TrimPrefix(ref, "refs/")
	if strings.HasPrefix(ref, "heads/") || strings.HasPrefix(ref, "tags/") {
		return ref
	}

	return "heads/" + ref
}

func translate(err error) error {
	if IsNotFound(err) {
		return fmt.Errorf("%w: %w", shortener.ErrNotFound, err)
	}

	return err
}

// Compile-time check.
var _ shortener.DocumentStore = (*DocumentStore)(nil)
