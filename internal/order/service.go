package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// IdempotencyGuard fences duplicate submissions of the same checkout.
// Acquire claims a key; it returns false if the key is already held.
// Release gives the key back when the placement was rejected, so an
// unchanged resubmission reproduces the original validation error instead
// of a duplicate-request error.
type IdempotencyGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// EventPublisher emits domain events after a successful commit. Publishing
// is best-effort and must never fail the placement.
type EventPublisher interface {
	OrderCreated(o *Order)
}

// PlaceOrderInput is the caller contract of the placement workflow. There is
// no price field anywhere in it by design.
type PlaceOrderInput struct {
	UserID         uuid.UUID
	Items          []LineItem
	IdempotencyKey string
}

type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error)
	GetOrder(ctx context.Context, id uuid.UUID, actor Actor) (*Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, actor Actor) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, rawStatus string, actor Actor) error
}

type service struct {
	repo      Repository
	guard     IdempotencyGuard
	publisher EventPublisher
}

func NewService(repo Repository, guard IdempotencyGuard, publisher EventPublisher) Service {
	return &service{
		repo:      repo,
		guard:     guard,
		publisher: publisher,
	}
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error) {
	if err := ValidateItems(input.Items); err != nil {
		log.Warn().Err(err).Stringer("user_id", input.UserID).Msg("service: checkout rejected by validation")
		return nil, err
	}

	if input.IdempotencyKey != "" {
		ok, err := s.guard.Acquire(ctx, input.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("service: idempotency check failed: %w", err)
		}
		if !ok {
			log.Warn().Str("idempotency_key", input.IdempotencyKey).Msg("service: duplicate checkout submission")
			return nil, ErrDuplicateRequest
		}
	}

	o, err := s.repo.PlaceOrder(ctx, input.UserID, input.Items)
	if err != nil {
		// The reservation was rolled back, so the key must not stay claimed.
		if input.IdempotencyKey != "" {
			if relErr := s.guard.Release(ctx, input.IdempotencyKey); relErr != nil {
				log.Error().Err(relErr).Str("idempotency_key", input.IdempotencyKey).Msg("service: failed to release idempotency key")
			}
		}

		var notFound *ProductNotFoundError
		var noStock *InsufficientStockError
		if errors.As(err, &notFound) || errors.As(err, &noStock) {
			log.Warn().Err(err).Stringer("user_id", input.UserID).Msg("service: checkout rejected by reservation")
			return nil, err
		}

		log.Error().Err(err).Stringer("user_id", input.UserID).Msg("service: failed to place order")
		return nil, fmt.Errorf("service: failed to place order: %w", err)
	}

	if s.publisher != nil {
		s.publisher.OrderCreated(o)
	}

	log.Info().
		Stringer("order_id", o.ID).
		Stringer("user_id", o.UserID).
		Str("total", o.Total.String()).
		Int("items", len(o.Items)).
		Msg("service: order placed")

	return o, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID, actor Actor) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order")
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}

	if !actor.Admin && o.UserID != actor.UserID {
		log.Warn().Stringer("order_id", id).Stringer("user_id", actor.UserID).Msg("service: order access denied")
		return nil, ErrAccessDenied
	}

	return o, nil
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID, actor Actor) ([]Order, error) {
	if !actor.Admin && userID != actor.UserID {
		return nil, ErrAccessDenied
	}

	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to list user orders")
		return nil, fmt.Errorf("service: failed to list user orders: %w", err)
	}
	return orders, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, rawStatus string, actor Actor) error {
	if !actor.Admin {
		return ErrAccessDenied
	}

	newStatus, err := ParseStatus(rawStatus)
	if err != nil {
		return err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to get order for status update")
		return fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if current.Status == newStatus {
		return nil
	}

	if !current.Status.CanTransitionTo(newStatus) {
		log.Warn().
			Stringer("order_id", id).
			Stringer("current_status", current.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, newStatus)
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: failed to update order status")
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().
		Stringer("order_id", id).
		Stringer("old_status", current.Status).
		Stringer("new_status", newStatus).
		Msg("service: order status updated")
	return nil
}
