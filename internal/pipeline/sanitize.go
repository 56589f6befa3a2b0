package pipeline

import (
	"context"

	"github.com/microcosm-cc/bluemonday"
)

// SanitizingRenderer strips unsafe markup from another renderer's output
// using a bluemonday UGC policy. id and class attributes survive so anchors
// and layout styling keep working.
type SanitizingRenderer struct {
	next   Renderer
	policy *bluemonday.Policy
}

// Compile-time interface check.
var _ Renderer = (*SanitizingRenderer)(nil)

// NewSanitizingRenderer wraps next with sanitization.
func NewSanitizingRenderer(next Renderer) *SanitizingRenderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id", "class").Globally()
	return &SanitizingRenderer{next: next, policy: policy}
}

// Render renders with the wrapped renderer and sanitizes the result.
func (r *SanitizingRenderer) Render(ctx context.Context, markdown string) (string, error) {
	out, err := r.next.Render(ctx, markdown)
	if err != nil {
		return "", err
	}
	return r.policy.Sanitize(out), nil
}
