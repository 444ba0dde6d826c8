package domain

import "context"

// Repository is the durable cache. The whole catalog lives under a single key.
type Repository interface {
	Load(ctx context.Context) ([]Product, error)
	ReplaceAll(ctx context.Context, products []Product) error
}

// RemoteCatalog is the product API the engine syncs with on a best-effort basis.
type RemoteCatalog interface {
	List(ctx context.Context) ([]Product, error)
	// Create returns the server's record, or nil when the server answered without a body.
	Create(ctx context.Context, req CreateRequest) (*Product, error)
	Update(ctx context.Context, id int64, fields EditBuffer) error
	Delete(ctx context.Context, id int64) error
}

// CorruptCacheError is returned by a Repository whose stored value cannot be decoded.
type CorruptCacheError struct {
	Key string
	Err error
}

func (e *CorruptCacheError) Error() string {
	return "corrupt cache value at " + e.Key + ": " + e.Err.Error()
}

func (e *CorruptCacheError) Unwrap() error { return e.Err }

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Notifier surfaces a message to whoever is driving the engine.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Confirmer asks the operator to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}
