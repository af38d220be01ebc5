package shortener

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Actor identifies who requested a mutation. It is recorded for audit only.
type Actor struct {
	Tag  string `json:"tag"            validate:"required,max=64"`
	Nick string `json:"nick,omitempty" validate:"max=64"`
}

// DisplayName renders the actor for commit metadata.
func (a Actor) DisplayName() string {
	if a.Nick == "" || a.Nick == a.Tag {
		return a.Tag
	}

	return fmt.Sprintf("%s (%s)", a.Nick, a.Tag)
}

// MutationRequest describes one alias change. A nil Destination removes the alias.
type MutationRequest struct {
	Alias       string  `json:"alias"                 validate:"required,max=256,printascii"`
	Destination *string `json:"destination,omitempty" validate:"omitnil,min=1,max=2048"`
	Force       bool    `json:"force,omitempty"`
	Actor       Actor   `json:"actor"`
}

// IsRemoval reports whether the request deletes its alias.
func (r MutationRequest) IsRemoval() bool {
	return r.Destination == nil
}

// CommitMessage is the message of the commit produced by the request.
func (r MutationRequest) CommitMessage() string {
	if r.IsRemoval() {
		return fmt.Sprintf("remove `/%s` shortlink", r.Alias)
	}

	return fmt.Sprintf("update `/%s` shortlink", r.Alias)
}

// MutationResult is returned once per successful mutation.
type MutationResult struct {
	CommitRef string
	Message   string
	// Changed is false when the request left the document untouched and no commit was made.
	Changed bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate rejects requests that must never reach the document store.
func Validate(req MutationRequest) error {
	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %s", ErrInvalidInput, describe(fieldErrs))
		}

		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if strings.TrimSpace(req.Alias) != req.Alias || strings.HasPrefix(req.Alias, "/") {
		return fmt.Errorf("%w: alias %q must not start with a slash or contain surrounding spaces",
			ErrInvalidInput, req.Alias)
	}

	return nil
}

func describe(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))

			continue
		}

		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}

	return strings.Join(parts, "; ")
}
