package ratelimit_test

import (
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shorter/internal/ratelimit"
	"github.com/stretchr/testify/assert"
)

// fakeContext only answers what scope resolution asks for.
type fakeContext struct {
	huma.Context

	method    string
	operation *huma.Operation
}

func (f *fakeContext) Method() string             { return f.method }
func (f *fakeContext) Operation() *huma.Operation { return f.operation }

func TestMethodScopeResolver_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method string
		want   ratelimit.Scope
	}{
		{http.MethodGet, ratelimit.ScopeRead},
		{http.MethodHead, ratelimit.ScopeRead},
		{http.MethodOptions, ratelimit.ScopeRead},
		{http.MethodPost, ratelimit.ScopeWrite},
		{http.MethodPut, ratelimit.ScopeWrite},
		{http.MethodPatch, ratelimit.ScopeWrite},
		{http.MethodDelete, ratelimit.ScopeWrite},
	}

	resolver := ratelimit.NewMethodScopeResolver()

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()

			scopes := resolver.Resolve(&fakeContext{method: tt.method})

			assert.Equal(t, []ratelimit.Scope{ratelimit.ScopeGlobal, tt.want}, scopes)
		})
	}
}

func TestOperationScopeResolver_Resolve(t *testing.T) {
	t.Parallel()

	resolver := ratelimit.NewOperationScopeResolver()

	t.Run("falls back to the method without metadata", func(t *testing.T) {
		t.Parallel()

		scopes := resolver.Resolve(&fakeContext{
			method:    http.MethodDelete,
			operation: &huma.Operation{Path: "/shortlinks"},
		})

		assert.Equal(t, []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}, scopes)
	})

	t.Run("falls back without an operation", func(t *testing.T) {
		t.Parallel()

		scopes := resolver.Resolve(&fakeContext{method: http.MethodGet})

		assert.Equal(t, []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeRead}, scopes)
	})

	t.Run("uses the configured scope", func(t *testing.T) {
		t.Parallel()

		scopes := resolver.Resolve(&fakeContext{
			method: http.MethodPost,
			operation: &huma.Operation{
				Metadata: map[string]any{
					ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeRead},
				},
			},
		})

		assert.Equal(t, []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeRead}, scopes)
	})

	t.Run("ignores metadata of the wrong type", func(t *testing.T) {
		t.Parallel()

		scopes := resolver.Resolve(&fakeContext{
			method: http.MethodPost,
			operation: &huma.Operation{
				Metadata: map[string]any{ratelimit.MetadataKey: "write"},
			},
		})

		assert.Equal(t, []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}, scopes)
	})
}

func TestGetEndpointConfig(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ratelimit.GetEndpointConfig(&fakeContext{}))

	cfg := ratelimit.GetEndpointConfig(&fakeContext{
		operation: &huma.Operation{
			Metadata: map[string]any{
				ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
			},
		},
	})

	if assert.NotNil(t, cfg) {
		assert.True(t, cfg.Disabled)
	}
}
