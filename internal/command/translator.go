package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/serroba/shorter/internal/expiration"
	"github.com/serroba/shorter/internal/shortener"
	"go.uber.org/zap"
)

// ErrExpirationDisabled is reported when a TTL is requested but no scheduler is configured.
var ErrExpirationDisabled = errors.New("expiration is not enabled")

// Invocation is an authorized, already parsed command. A nil Destination removes the alias.
type Invocation struct {
	Alias       string
	Destination *string
	Force       bool
	TTL         string
	Actor       shortener.Actor
}

// Scheduler schedules the removal of an alias.
type Scheduler interface {
	Schedule(ctx context.Context, msg expiration.Message, delay time.Duration) (expiration.Handle, error)
}

// Config selects the document a Translator mutates and how commits are linked.
type Config struct {
	Ref  string
	Path string
	// CommitURL is a format string with a single %s for the commit ref. Empty links to the bare ref.
	CommitURL string
}

// Translator turns invocations into mutations and mutation outcomes into text.
// It never returns an error: every failure is rendered for the caller.
type Translator struct {
	applier   shortener.Applier
	scheduler Scheduler
	config    Config
	logger    *zap.Logger
}

// NewTranslator creates a translator. scheduler may be nil, in which case TTLs are rejected.
func NewTranslator(applier shortener.Applier, scheduler Scheduler, config Config, logger *zap.Logger) *Translator {
	return &Translator{
		applier:   applier,
		scheduler: scheduler,
		config:    config,
		logger:    logger,
	}
}

// Add creates or overwrites an alias and schedules its expiration when a TTL is given.
func (t *Translator) Add(ctx context.Context, inv Invocation) string {
	if inv.Destination == nil {
		return fmt.Errorf("%w: destination is required", shortener.ErrInvalidInput).Error()
	}

	return t.Handle(ctx, inv)
}

// Remove deletes an alias. Destination and TTL are ignored.
func (t *Translator) Remove(ctx context.Context, inv Invocation) string {
	inv.Destination = nil
	inv.TTL = ""
	inv.Force = false

	return t.Handle(ctx, inv)
}

// Handle dispatches on the invocation: with a destination it adds, without one it removes.
func (t *Translator) Handle(ctx context.Context, inv Invocation) string {
	req := shortener.MutationRequest{
		Alias:       inv.Alias,
		Destination: inv.Destination,
		Force:       inv.Force,
		Actor:       inv.Actor,
	}

	// The TTL is checked up front so a mutation never lands that could not then expire.
	ttl, err := t.parseTTL(req, inv.TTL)
	if err != nil {
		return err.Error()
	}

	result, err := t.applier.Apply(ctx, t.config.Ref, t.config.Path, req)
	if err != nil {
		t.logger.Info("shortlink mutation failed",
			zap.String("alias", inv.Alias),
			zap.String("actor", inv.Actor.Tag),
			zap.Error(err),
		)

		return err.Error()
	}

	var out strings.Builder

	if result.Changed {
		fmt.Fprintf(&out, "Created commit [%s](%s)!", result.Message, t.commitURL(result.CommitRef))
	} else {
		fmt.Fprintf(&out, "Nothing to commit, `/%s` is already up to date.", inv.Alias)
	}

	if ttl == 0 {
		return out.String()
	}

	handle, err := t.scheduler.Schedule(ctx, expiration.Message{Alias: inv.Alias, Actor: inv.Actor}, ttl)
	if err != nil {
		t.logger.Error("failed to schedule expiration",
			zap.String("alias", inv.Alias),
			zap.Error(err),
		)

		fmt.Fprintf(&out, " Failed to schedule expiration: %s", err)

		return out.String()
	}

	fmt.Fprintf(&out, " This shortlink expires at %s.", handle.DeliverAt.UTC().Format(time.RFC3339))

	return out.String()
}

func (t *Translator) parseTTL(req shortener.MutationRequest, raw string) (time.Duration, error) {
	ttl, err := ParseTTL(raw)
	if err != nil {
		return 0, err
	}

	if ttl == 0 {
		return 0, nil
	}

	if req.IsRemoval() {
		return 0, fmt.Errorf("%w: ttl only applies when adding a shortlink", shortener.ErrInvalidInput)
	}

	if t.scheduler == nil {
		return 0, fmt.Errorf("%w: %w", shortener.ErrInvalidInput, ErrExpirationDisabled)
	}

	return ttl, nil
}

func (t *Translator) commitURL(ref string) string {
	if t.config.CommitURL == "" {
		return ref
	}

	return fmt.Sprintf(t.config.CommitURL, ref)
}
