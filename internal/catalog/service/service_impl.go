package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
	"github.com/railzwaylabs/catalogadmin/internal/config"
	"github.com/railzwaylabs/catalogadmin/internal/observability"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg      config.Config
	Log      *zap.Logger
	Repo     domain.Repository
	Remote   domain.RemoteCatalog
	Notifier domain.Notifier
	Confirm  domain.Confirmer
	Metrics  *observability.Metrics `optional:"true"`
}

// Service is the reconciliation engine. Every operation holds mu until it completes,
// remote call included, so callers observe operations one at a time.
type Service struct {
	mu sync.Mutex

	log     *zap.Logger
	repo    domain.Repository
	remote  domain.RemoteCatalog
	notify  domain.Notifier
	confirm domain.Confirmer
	metrics *observability.Metrics
	variant domain.Variant

	edit domain.EditState
}

func New(p Params) (domain.Service, error) {
	variant, err := domain.ParseVariant(p.Cfg.Catalog.Variant)
	if err != nil {
		return nil, err
	}
	return &Service{
		log:     p.Log.Named("catalog.service"),
		repo:    p.Repo,
		remote:  p.Remote,
		notify:  p.Notifier,
		confirm: p.Confirm,
		metrics: p.Metrics,
		variant: variant,
		edit:    domain.Idle{},
	}, nil
}

func (s *Service) Variant() domain.Variant { return s.variant }

func (s *Service) Load(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// ids are renumbered below, so any buffered edit would point at the wrong row
	s.edit = domain.Idle{}

	remote, err := s.remote.List(ctx)
	if err != nil {
		s.log.Warn("failed to fetch products, using cache", zap.Error(err))
		s.observe("load", domain.OutcomeLocalOnly)
		cached, cacheErr := s.loadCache(ctx)
		if cacheErr != nil {
			return nil, cacheErr
		}
		return cached, nil
	}

	cached, err := s.loadCache(ctx)
	if err != nil {
		return nil, err
	}

	merged := mergeProducts(remote, cached, s.log)
	if err := s.repo.ReplaceAll(ctx, merged); err != nil {
		return nil, fmt.Errorf("persist merged products: %w", err)
	}

	s.observe("load", domain.OutcomeSyncedRemote)
	s.log.Info("products loaded",
		zap.Int("remote", len(remote)),
		zap.Int("cached", len(cached)),
		zap.Int("merged", len(merged)),
	)
	return merged, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadCache(ctx)
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if missing := s.missingFields(req); len(missing) > 0 {
		verr := &domain.ValidationError{Missing: missing}
		s.notify.Notify(ctx, domain.Notice{Level: domain.NoticeError, Message: "All fields are required!"})
		s.log.Info("create rejected", zap.Strings("missing", missing))
		return domain.Result{}, verr
	}
	if !s.variant.HasCategories() {
		req.Category = ""
		req.Size = ""
	}

	products, err := s.loadCache(ctx)
	if err != nil {
		return domain.Result{}, err
	}

	record := domain.Product{
		ID:           nextID(products),
		Name:         req.Name,
		Details:      req.Details,
		Price:        req.Price,
		Category:     req.Category,
		Size:         req.Size,
		ProductImage: req.Image.Filename,
	}

	outcome := domain.OutcomeSyncedRemote
	created, err := s.remote.Create(ctx, req)
	if err != nil {
		outcome = domain.OutcomeLocalOnly
		s.log.Warn("failed to add product to API", zap.Error(err), zap.Int64("id", record.ID))
		s.notify.Notify(ctx, domain.Notice{
			Level:   domain.NoticeWarning,
			Message: "Product added locally. Will sync with API when online.",
		})
	} else {
		record = overlayCreated(record, created)
		record.FromAPI = true
		s.notify.Notify(ctx, domain.Notice{
			Level:   domain.NoticeInfo,
			Message: "Product added successfully to the API!",
		})
	}

	products = append(products, record)
	if err := s.repo.ReplaceAll(ctx, products); err != nil {
		return domain.Result{}, fmt.Errorf("persist products: %w", err)
	}

	s.observe("create", outcome)
	return domain.Result{Outcome: outcome, Product: &record}, nil
}

func (s *Service) Delete(ctx context.Context, id int64) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.confirm.Confirm(ctx, "Are you sure you want to delete this product?") {
		return domain.Result{}, domain.ErrNotConfirmed
	}

	products, err := s.loadCache(ctx)
	if err != nil {
		return domain.Result{}, err
	}

	target, found := findProduct(products, id)
	outcome := domain.OutcomeLocalOnly
	if s.attemptsRemoteDelete(target, found) {
		if err := s.remote.Delete(ctx, id); err != nil {
			s.log.Warn("failed to delete product from API", zap.Error(err), zap.Int64("id", id))
			s.notify.Notify(ctx, domain.Notice{
				Level:   domain.NoticeWarning,
				Message: "Failed to delete product from API. Deleting locally instead.",
			})
		} else {
			outcome = domain.OutcomeSyncedRemote
			s.notify.Notify(ctx, domain.Notice{
				Level:   domain.NoticeInfo,
				Message: "Product deleted successfully from the API!",
			})
		}
	}

	remaining := removeProduct(products, id)
	if err := s.repo.ReplaceAll(ctx, remaining); err != nil {
		return domain.Result{}, fmt.Errorf("persist products: %w", err)
	}

	if editing, ok := s.edit.(domain.Editing); ok && editing.TargetID == id {
		s.edit = domain.Idle{}
	}

	s.notify.Notify(ctx, domain.Notice{Level: domain.NoticeInfo, Message: "Product deleted successfully!"})
	s.observe("delete", outcome)

	result := domain.Result{Outcome: outcome}
	if found {
		result.Product = &target
	}
	return result, nil
}

func (s *Service) attemptsRemoteDelete(target domain.Product, found bool) bool {
	if !s.variant.TracksOrigin() {
		return true
	}
	return found && target.FromAPI
}

func (s *Service) missingFields(req domain.CreateRequest) []string {
	values := map[string]string{
		domain.FieldName:     req.Name,
		domain.FieldDetails:  req.Details,
		domain.FieldPrice:    string(req.Price),
		domain.FieldCategory: req.Category,
		domain.FieldSize:     req.Size,
	}
	if req.Image != nil {
		values[domain.FieldProductImage] = req.Image.Filename
	}

	var missing []string
	for _, field := range s.variant.RequiredFields() {
		if strings.TrimSpace(values[field]) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// loadCache treats an unreadable cache value as empty; the next persist rewrites it.
func (s *Service) loadCache(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.Load(ctx)
	if err != nil {
		var decodeErr *domain.CorruptCacheError
		if errors.As(err, &decodeErr) {
			s.log.Warn("discarding unreadable cache", zap.Error(err))
			return []domain.Product{}, nil
		}
		return nil, fmt.Errorf("load cache: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (s *Service) observe(operation string, outcome domain.Outcome) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveSync(operation, string(outcome))
}
