package interact

import (
	"context"
	"sync"

	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
	"go.uber.org/zap"
)

type collectorKey struct{}
type confirmKey struct{}

// Collector gathers the notices raised while one request is handled.
type Collector struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func (c *Collector) Add(n domain.Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}

func (c *Collector) Notices() []domain.Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Notice, len(c.notices))
	copy(out, c.notices)
	return out
}

func WithCollector(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

func CollectorFromContext(ctx context.Context) (*Collector, bool) {
	c, ok := ctx.Value(collectorKey{}).(*Collector)
	return c, ok && c != nil
}

// WithConfirmation records the operator's answer ahead of the engine asking for it.
func WithConfirmation(ctx context.Context, confirmed bool) context.Context {
	return context.WithValue(ctx, confirmKey{}, confirmed)
}

// ContextNotifier hands notices to the request collector, falling back to the log.
type ContextNotifier struct {
	log *zap.Logger
}

func NewContextNotifier(log *zap.Logger) *ContextNotifier {
	return &ContextNotifier{log: log.Named("catalog.notice")}
}

func (n *ContextNotifier) Notify(ctx context.Context, notice domain.Notice) {
	if c, ok := CollectorFromContext(ctx); ok {
		c.Add(notice)
		return
	}
	n.log.Info(notice.Message, zap.String("level", string(notice.Level)))
}

// ContextConfirmer answers with whatever WithConfirmation stored; absent means no.
type ContextConfirmer struct{}

func (ContextConfirmer) Confirm(ctx context.Context, prompt string) bool {
	confirmed, _ := ctx.Value(confirmKey{}).(bool)
	return confirmed
}
