// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// EditorKey is the context key for the editing user.
type EditorKey struct{}

// Editor identifies who is making an edit.
type Editor struct {
	UserID   int64
	Username string
}

// WithEditor returns a context with the editor embedded.
func WithEditor(ctx context.Context, editor Editor) context.Context {
	return context.WithValue(ctx, EditorKey{}, editor)
}

// EditorFromContext returns the editor from context, or the zero Editor if not set.
func EditorFromContext(ctx context.Context) Editor {
	if v, ok := ctx.Value(EditorKey{}).(Editor); ok {
		return v
	}
	return Editor{}
}

// ActorFromContext returns a display name for the editor, or "" if unknown.
func ActorFromContext(ctx context.Context) string {
	return EditorFromContext(ctx).Username
}
