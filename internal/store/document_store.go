package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/serroba/shorter/internal/shortener"
)

// ErrCorruptObject is returned when stored bytes do not hash to the id they are stored under.
var ErrCorruptObject = errors.New("object content does not match its id")

// ObjectBackend persists immutable objects and the mutable refs pointing at commits.
type ObjectBackend interface {
	// PutObject stores data under id. Storing an existing id is a no-op.
	PutObject(ctx context.Context, id string, data []byte) error

	// GetObject returns the data stored under id, or shortener.ErrNotFound.
	GetObject(ctx context.Context, id string) ([]byte, error)

	// GetRef returns the commit id a ref points at, or shortener.ErrNotFound.
	GetRef(ctx context.Context, name string) (string, error)

	// SwapRef points name at next only if it currently points at expected.
	// An empty expected means the ref must not exist yet.
	SwapRef(ctx context.Context, name, expected, next string) (bool, error)
}

// Commit is a decoded commit object.
type Commit struct {
	ID      string
	Tree    string
	Parent  string
	Message string
	Author  shortener.Author
}

// DocumentStore is a content-addressed repository implementing shortener.DocumentStore
// on top of any ObjectBackend.
type DocumentStore struct {
	backend ObjectBackend
}

// NewDocumentStore creates a document store over backend.
func NewDocumentStore(backend ObjectBackend) *DocumentStore {
	return &DocumentStore{backend: backend}
}

// NewMemoryDocumentStore creates a document store backed by process memory.
func NewMemoryDocumentStore() *DocumentStore {
	return NewDocumentStore(NewMemoryBackend())
}

func (s *DocumentStore) ResolveRef(ctx context.Context, ref string) (string, error) {
	return s.backend.GetRef(ctx, ref)
}

func (s *DocumentStore) ReadText(ctx context.Context, commitID, path string) (string, error) {
	tree, err := s.treeOf(ctx, commitID)
	if err != nil {
		return "", err
	}

	blobID, ok := tree.Entries[path]
	if !ok {
		return "", fmt.Errorf("%s at %s: %w", path, commitID, shortener.ErrNotFound)
	}

	data, err := s.get(ctx, blobID, codecBlob)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func (s *DocumentStore) CreateTree(ctx context.Context, baseCommit, path, content string) (string, error) {
	entries := make(map[string]string)

	if baseCommit != "" {
		base, err := s.treeOf(ctx, baseCommit)
		if err != nil {
			return "", err
		}

		for p, id := range base.Entries {
			entries[p] = id
		}
	}

	blobID, err := s.put(ctx, codecBlob, []byte(content))
	if err != nil {
		return "", err
	}

	entries[path] = blobID

	return s.putJSON(ctx, &treeObject{V: objectVersion, Entries: entries})
}

func (s *DocumentStore) CreateCommit(ctx context.Context, req shortener.CommitRequest) (string, error) {
	if _, err := s.get(ctx, req.Tree, codecObject); err != nil {
		return "", fmt.Errorf("tree %s: %w", req.Tree, err)
	}

	if req.Parent != "" {
		if _, err := s.ReadCommit(ctx, req.Parent); err != nil {
			return "", fmt.Errorf("parent %s: %w", req.Parent, err)
		}
	}

	return s.putJSON(ctx, &commitObject{
		V:      objectVersion,
		Tree:   req.Tree,
		Parent: req.Parent,
		Author: authorObject{
			Name:  req.Author.Name,
			Email: req.Author.Email,
			Date:  req.Author.Date,
		},
		Message: req.Message,
	})
}

func (s *DocumentStore) UpdateRef(ctx context.Context, ref, expectedOld, newCommit string) error {
	swapped, err := s.backend.SwapRef(ctx, ref, expectedOld, newCommit)
	if err != nil {
		return err
	}

	if !swapped {
		return fmt.Errorf("%s expected at %q: %w", ref, expectedOld, shortener.ErrRefConflict)
	}

	return nil
}

// ReadCommit loads and decodes a commit object.
func (s *DocumentStore) ReadCommit(ctx context.Context, id string) (*Commit, error) {
	var obj commitObject
	if err := s.getJSON(ctx, id, &obj); err != nil {
		return nil, err
	}

	return &Commit{
		ID:      id,
		Tree:    obj.Tree,
		Parent:  obj.Parent,
		Message: obj.Message,
		Author: shortener.Author{
			Name:  obj.Author.Name,
			Email: obj.Author.Email,
			Date:  obj.Author.Date,
		},
	}, nil
}

func (s *DocumentStore) treeOf(ctx context.Context, commitID string) (*treeObject, error) {
	commit, err := s.ReadCommit(ctx, commitID)
	if err != nil {
		return nil, err
	}

	var tree treeObject
	if err := s.getJSON(ctx, commit.Tree, &tree); err != nil {
		return nil, err
	}

	return &tree, nil
}

func (s *DocumentStore) put(ctx context.Context, codec uint64, data []byte) (string, error) {
	c, err := computeCID(codec, data)
	if err != nil {
		return "", err
	}

	id := encodeCID(c)
	if err := s.backend.PutObject(ctx, id, data); err != nil {
		return "", fmt.Errorf("store object %s: %w", id, err)
	}

	return id, nil
}

func (s *DocumentStore) putJSON(ctx context.Context, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	return s.put(ctx, codecObject, data)
}

// get loads an object and checks it against its id.
func (s *DocumentStore) get(ctx context.Context, id string, codec uint64) ([]byte, error) {
	c, err := decodeCID(id)
	if err != nil {
		return nil, err
	}

	if c.Type() != codec {
		return nil, fmt.Errorf("object %s has codec %#x, want %#x", id, c.Type(), codec)
	}

	data, err := s.backend.GetObject(ctx, id)
	if err != nil {
		return nil, err
	}

	sum, err := computeCID(codec, data)
	if err != nil {
		return nil, err
	}

	if !sum.Equals(c) {
		return nil, fmt.Errorf("object %s: %w", id, ErrCorruptObject)
	}

	return data, nil
}

func (s *DocumentStore) getJSON(ctx context.Context, id string, v any) error {
	data, err := s.get(ctx, id, codecObject)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode object %s: %w", id, err)
	}

	return nil
}

// Compile-time check.
var _ shortener.DocumentStore = (*DocumentStore)(nil)
