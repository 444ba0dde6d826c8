package service

import (
	"context"
	"fmt"

	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
	"go.uber.org/zap"
)

func (s *Service) BeginEdit(ctx context.Context, id int64) (domain.Editing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.loadCache(ctx)
	if err != nil {
		return domain.Editing{}, err
	}
	target, ok := findProduct(products, id)
	if !ok {
		return domain.Editing{}, domain.ErrNotFound
	}

	if prev, ok := s.edit.(domain.Editing); ok && prev.TargetID != id {
		s.log.Debug("abandoning unsaved edit", zap.Int64("id", prev.TargetID))
	}

	editing := domain.Editing{TargetID: id, Buffer: domain.BufferFrom(target)}
	s.edit = editing
	return editing, nil
}

func (s *Service) ChangeEdit(ctx context.Context, field, value string) (domain.Editing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	editing, ok := s.edit.(domain.Editing)
	if !ok {
		return domain.Editing{}, domain.ErrNotEditing
	}
	if err := editing.Buffer.Set(s.variant, field, value); err != nil {
		return domain.Editing{}, err
	}
	s.edit = editing
	return editing, nil
}

// SaveEdit pushes the buffer to the API and commits it to the cache whatever the API said.
func (s *Service) SaveEdit(ctx context.Context) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	editing, ok := s.edit.(domain.Editing)
	if !ok {
		return domain.Result{}, domain.ErrNotEditing
	}

	outcome := domain.OutcomeSyncedRemote
	if err := s.remote.Update(ctx, editing.TargetID, editing.Buffer); err != nil {
		outcome = domain.OutcomeLocalOnly
		s.log.Warn("failed to update product in API", zap.Error(err), zap.Int64("id", editing.TargetID))
		s.notify.Notify(ctx, domain.Notice{
			Level:   domain.NoticeWarning,
			Message: "Failed to update product in API. Updating locally instead.",
		})
	} else {
		s.notify.Notify(ctx, domain.Notice{
			Level:   domain.NoticeInfo,
			Message: "Product updated successfully in the API!",
		})
	}

	products, err := s.loadCache(ctx)
	if err != nil {
		return domain.Result{}, err
	}

	var saved *domain.Product
	for i := range products {
		if products[i].ID == editing.TargetID {
			products[i] = editing.Buffer.ApplyTo(s.variant, products[i])
			p := products[i]
			saved = &p
			break
		}
	}
	if err := s.repo.ReplaceAll(ctx, products); err != nil {
		return domain.Result{}, fmt.Errorf("persist products: %w", err)
	}

	s.edit = domain.Idle{}
	s.observe("update", outcome)
	return domain.Result{Outcome: outcome, Product: saved}, nil
}

func (s *Service) CancelEdit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.edit = domain.Idle{}
	return nil
}

func (s *Service) EditState(ctx context.Context) domain.EditState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.edit
}
