package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultAuthorDomain is the email domain used for actor commit authors.
const DefaultAuthorDomain = "users.noreply.shorter.local"

// Mutator applies a single alias change to the document as one commit, guarded by a
// compare-and-swap on the branch ref. It holds no lock and no per-call state, so any
// number of mutators may race against the same ref.
type Mutator struct {
	store        DocumentStore
	authorDomain string
	now          func() time.Time
	logger       *zap.Logger
}

// NewMutator creates a mutator over the given document store.
func NewMutator(store DocumentStore, authorDomain string, logger *zap.Logger) *Mutator {
	if authorDomain == "" {
		authorDomain = DefaultAuthorDomain
	}

	return &Mutator{
		store:        store,
		authorDomain: authorDomain,
		now:          time.Now,
		logger:       logger,
	}
}

// Apply reads the document at baseRef, applies req and commits the result. The ref is only
// advanced if it still points at the commit that was read; otherwise the whole mutation is
// discarded with ErrConcurrentModification and the caller decides whether to run it again.
func (m *Mutator) Apply(ctx context.Context, baseRef, path string, req MutationRequest) (*MutationResult, error) {
	if baseRef == "" || path == "" {
		return nil, fmt.Errorf("%w: document ref and path are required", ErrInvalidInput)
	}

	if err := Validate(req); err != nil {
		return nil, err
	}

	tip, err := m.store.ResolveRef(ctx, baseRef)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: resolving %s: %w", ErrNetworkFailure, baseRef, err)
	}

	text := EmptyDocument

	if tip != "" {
		text, err = m.store.ReadText(ctx, tip, path)
		if errors.Is(err, ErrNotFound) {
			text = EmptyDocument
		} else if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", ErrNetworkFailure, path, err)
		}
	}

	doc, err := Decode(text)
	if err != nil {
		return nil, err
	}

	message := req.CommitMessage()

	current, exists := doc[req.Alias]
	if !req.IsRemoval() && exists && !req.Force {
		return nil, fmt.Errorf("%w: the alias `%s` already exists", ErrAliasConflict, req.Alias)
	}

	unchanged := !exists
	if !req.IsRemoval() {
		unchanged = exists && current == *req.Destination
	}

	if unchanged {
		m.logger.Debug("shortlink unchanged, skipping commit",
			zap.String("alias", req.Alias),
			zap.String("ref", baseRef),
		)

		return &MutationResult{CommitRef: tip, Message: message}, nil
	}

	if req.IsRemoval() {
		delete(doc, req.Alias)
	} else {
		doc[req.Alias] = *req.Destination
	}

	content, err := Encode(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}

	tree, err := m.store.CreateTree(ctx, tip, path, content)
	if err != nil {
		return nil, fmt.Errorf("%w: creating tree: %w", ErrNetworkFailure, err)
	}

	commit, err := m.store.CreateCommit(ctx, CommitRequest{
		Tree:    tree,
		Parent:  tip,
		Message: message,
		Author:  m.author(req.Actor),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating commit: %w", ErrNetworkFailure, err)
	}

	if err := m.store.UpdateRef(ctx, baseRef, tip, commit); err != nil {
		if errors.Is(err, ErrRefConflict) {
			return nil, fmt.Errorf("%w: %s moved while updating `/%s`, try again",
				ErrConcurrentModification, baseRef, req.Alias)
		}

		// The update may have landed; the tip has to be re-read before anything is retried.
		return nil, fmt.Errorf("%w: updating %s, outcome unknown: %w", ErrNetworkFailure, baseRef, err)
	}

	m.logger.Info("shortlink committed",
		zap.String("alias", req.Alias),
		zap.Bool("removal", req.IsRemoval()),
		zap.String("ref", baseRef),
		zap.String("commit", commit),
		zap.String("actor", req.Actor.Tag),
	)

	return &MutationResult{CommitRef: commit, Message: message, Changed: true}, nil
}

func (m *Mutator) author(actor Actor) Author {
	return Author{
		Name:  actor.DisplayName(),
		Email: actor.Tag + "@" + m.authorDomain,
		Date:  m.now().UTC(),
	}
}
