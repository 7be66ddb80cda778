package listing

import "context"

// Prompt describes what is about to be deleted
type Prompt struct {
	Resource string
	Count    int
}

// Confirmer asks the admin before a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) bool
}

// ConfirmerFunc adapts a function to Confirmer
type ConfirmerFunc func(ctx context.Context, p Prompt) bool

func (f ConfirmerFunc) Confirm(ctx context.Context, p Prompt) bool { return f(ctx, p) }

type confirmKey struct{}

// Confirmed marks ctx as carrying the admin's confirmation
func Confirmed(ctx context.Context) context.Context {
	return context.WithValue(ctx, confirmKey{}, true)
}

// ContextConfirmer confirms only when the request carried a confirmation
type ContextConfirmer struct{}

func (ContextConfirmer) Confirm(ctx context.Context, _ Prompt) bool {
	ok, _ := ctx.Value(confirmKey{}).(bool)
	return ok
}

// NoticeKind is the toast style
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a toast message
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Notifier shows toasts
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, n Notice)

func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }
