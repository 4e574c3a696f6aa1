package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"

	"orders/internal/domain"
	"orders/internal/domain/bookings"
	"orders/internal/domain/menus"
	"orders/internal/entities"
	"orders/internal/idempotency"
)

//go:generate mockgen -destination=mocks/mock_bookings_repo.go -package=mocks orders/internal/application/usecases/booking BookingsRepo
type BookingsRepo interface {
	Create(ctx context.Context, b bookings.Booking) (bookings.Booking, error)
	GetByID(ctx context.Context, id int64) (bookings.Booking, error)
	GetByIDForUpdate(ctx context.Context, id int64) (bookings.Booking, error)
	Update(ctx context.Context, id int64, patch bookings.Patch) (bookings.Booking, error)
	Delete(ctx context.Context, id int64) error
}

//go:generate mockgen -destination=mocks/mock_menu_lookup.go -package=mocks orders/internal/application/usecases/booking MenuLookup
type MenuLookup interface {
	Lookup(ctx context.Context, menuID int64) (menus.Slot, error)
}

// EventPublisher publishes events as part of the transaction in ctx.
//
//go:generate mockgen -destination=mocks/mock_event_publisher.go -package=mocks orders/internal/application/usecases/booking EventPublisher
type EventPublisher interface {
	Publish(ctx context.Context, event entities.Event) error
}

type TrManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type CreateCommand struct {
	UserID int64
	MenuID int64
	Status *bookings.Status
}

type CreateResult struct {
	Booking bookings.Booking
	// Slot is nil when the menu service could not be reached in best-effort mode.
	Slot *menus.Slot
}

// PolicyEngine applies the booking rules to every write.
type PolicyEngine struct {
	policy    bookings.Policy
	repo      BookingsRepo
	menus     MenuLookup
	publisher EventPublisher
	trManager TrManager
	now       func() time.Time
}

func NewPolicyEngine(
	policy bookings.Policy,
	repo BookingsRepo,
	menuLookup MenuLookup,
	publisher EventPublisher,
	trManager TrManager,
	now func() time.Time,
) *PolicyEngine {
	if now == nil {
		now = time.Now
	}
	return &PolicyEngine{
		policy:    policy,
		repo:      repo,
		menus:     menuLookup,
		publisher: publisher,
		trManager: trManager,
		now:       now,
	}
}

func (e *PolicyEngine) Policy() bookings.Policy {
	return e.policy
}

func (e *PolicyEngine) Create(ctx context.Context, cmd CreateCommand) (CreateResult, error) {
	if cmd.UserID <= 0 || cmd.MenuID <= 0 {
		return CreateResult{}, domain.NewError(bookings.ErrMissingFields, "user_id and menu_id are required")
	}

	status := e.policy.DefaultStatus
	if cmd.Status != nil {
		status = *cmd.Status
		if err := e.policy.Lifecycle.Validate(status); err != nil {
			return CreateResult{}, err
		}
	}

	slot, err := e.checkOrderWindow(ctx, cmd.MenuID)
	if err != nil {
		return CreateResult{}, err
	}

	var created bookings.Booking
	err = e.trManager.Do(ctx, func(ctx context.Context) error {
		created, err = e.repo.Create(ctx, bookings.Booking{
			UserID: cmd.UserID,
			MenuID: cmd.MenuID,
			Status: status,
		})
		if err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		return e.publish(ctx, entities.BookingCreated_v1{
			Header:    entities.NewEventHeader(idempotency.GetKey(ctx), e.now()),
			BookingID: created.ID,
			UserID:    created.UserID,
			MenuID:    created.MenuID,
			Status:    string(created.Status),
			CreatedAt: created.CreatedAt,
		})
	})
	if err != nil {
		return CreateResult{}, err
	}

	log.FromContext(ctx).
		WithField("booking_id", created.ID).
		WithField("menu_id", created.MenuID).
		Info("Booking created")

	return CreateResult{Booking: created, Slot: slot}, nil
}

// Update applies a partial update. A new menu must pass the same window as a
// new booking; a change to cancelled must pass the cancellation window.
func (e *PolicyEngine) Update(ctx context.Context, id int64, patch bookings.Patch) (bookings.Booking, error) {
	return e.change(ctx, id, patch)
}

func (e *PolicyEngine) UpdateStatus(ctx context.Context, id int64, status bookings.Status) (bookings.Booking, error) {
	updated, err := e.change(ctx, id, bookings.Patch{Status: &status})
	if err != nil {
		return bookings.Booking{}, err
	}

	log.FromContext(ctx).
		WithField("booking_id", id).
		WithField("status", status).
		Info("Booking status changed")

	return updated, nil
}

// checkedSlots holds the menu ids whose windows already passed.
type checkedSlots struct {
	order  int64
	cancel int64
}

// change checks the patch against an unlocked read first, so menu lookups
// never run while the row is locked. Under the lock the checks are repeated;
// a slot is only looked up again when the row changed in between.
func (e *PolicyEngine) change(ctx context.Context, id int64, patch bookings.Patch) (bookings.Booking, error) {
	before, err := e.repo.GetByID(ctx, id)
	if err != nil {
		return bookings.Booking{}, err
	}

	if patch.IsEmpty() {
		return bookings.Booking{}, bookings.ErrNothingToUpdate
	}

	var checked checkedSlots
	if err := e.checkChange(ctx, before, patch, &checked); err != nil {
		return bookings.Booking{}, err
	}

	var updated bookings.Booking
	err = e.trManager.Do(ctx, func(ctx context.Context) error {
		current, err := e.repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err := e.checkChange(ctx, current, patch, &checked); err != nil {
			return err
		}

		updated, err = e.repo.Update(ctx, id, patch)
		if err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}

		return e.publish(ctx, e.changeEvent(ctx, current, updated))
	})
	if err != nil {
		return bookings.Booking{}, err
	}

	return updated, nil
}

func (e *PolicyEngine) checkChange(ctx context.Context, current bookings.Booking, patch bookings.Patch, checked *checkedSlots) error {
	if patch.Status != nil {
		if err := e.policy.Lifecycle.CanTransition(current.Status, *patch.Status); err != nil {
			return err
		}
	}

	target := patch.Apply(current)

	if target.MenuID != current.MenuID && target.MenuID != checked.order {
		if _, err := e.checkOrderWindow(ctx, target.MenuID); err != nil {
			return err
		}
		checked.order = target.MenuID
	}

	if target.IsCancelled() && !current.IsCancelled() && target.MenuID != checked.cancel {
		if err := e.checkCancelWindow(ctx, target); err != nil {
			return err
		}
		checked.cancel = target.MenuID
	}

	return nil
}

func (e *PolicyEngine) Cancel(ctx context.Context, id int64) (bookings.Booking, error) {
	if !e.policy.Lifecycle.Has(bookings.StatusCancelled) {
		return bookings.Booking{}, domain.NewError(bookings.ErrInvalidStatus, "cancellation is not supported by the configured statuses")
	}
	return e.UpdateStatus(ctx, id, bookings.StatusCancelled)
}

func (e *PolicyEngine) Delete(ctx context.Context, id int64) error {
	return e.trManager.Do(ctx, func(ctx context.Context) error {
		current, err := e.repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err := e.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete booking: %w", err)
		}

		return e.publish(ctx, entities.BookingDeleted_v1{
			Header:    entities.NewEventHeader(idempotency.GetKey(ctx), e.now()),
			BookingID: current.ID,
			UserID:    current.UserID,
		})
	})
}

func (e *PolicyEngine) changeEvent(ctx context.Context, before, after bookings.Booking) entities.Event {
	header := entities.NewEventHeader(idempotency.GetKey(ctx), e.now())

	if after.IsCancelled() && !before.IsCancelled() {
		return entities.BookingCancelled_v1{
			Header:      header,
			BookingID:   after.ID,
			UserID:      after.UserID,
			MenuID:      after.MenuID,
			CancelledAt: after.UpdatedAt,
		}
	}

	return entities.BookingUpdated_v1{
		Header:         header,
		BookingID:      after.ID,
		MenuID:         after.MenuID,
		PreviousMenuID: before.MenuID,
		Status:         string(after.Status),
		PreviousStatus: string(before.Status),
	}
}

func (e *PolicyEngine) publish(ctx context.Context, event entities.Event) error {
	if err := e.publisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish %T: %w", event, err)
	}
	return nil
}

// checkOrderWindow looks the slot up and rejects it when the meal is too
// close. A missing slot always fails. An unreachable menu service fails in
// strict mode and skips the check in best-effort mode.
func (e *PolicyEngine) checkOrderWindow(ctx context.Context, menuID int64) (*menus.Slot, error) {
	slot, err := e.menus.Lookup(ctx, menuID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, e.lookupFailed(ctx, menuID, err)
	}

	mealTime, err := slot.MealTime(e.policy.TimeZone())
	if err != nil {
		if err := e.lookupFailed(ctx, menuID, err); err != nil {
			return nil, err
		}
		return &slot, nil
	}

	if err := e.policy.CheckOrderWindow(mealTime, e.now()); err != nil {
		return nil, err
	}

	return &slot, nil
}

// checkCancelWindow looks the booked slot up live. A slot that no longer
// exists has no meal to protect, so the cancellation goes through.
func (e *PolicyEngine) checkCancelWindow(ctx context.Context, b bookings.Booking) error {
	slot, err := e.menus.Lookup(ctx, b.MenuID)
	if errors.Is(err, domain.ErrNotFound) {
		log.FromContext(ctx).
			WithField("booking_id", b.ID).
			WithField("menu_id", b.MenuID).
			Warn("Menu of cancelled booking no longer exists, skipping cancellation window")
		return nil
	}
	if err != nil {
		return e.lookupFailed(ctx, b.MenuID, err)
	}

	mealTime, err := slot.MealTime(e.policy.TimeZone())
	if err != nil {
		return e.lookupFailed(ctx, b.MenuID, err)
	}

	return e.policy.CheckCancelWindow(mealTime, e.now())
}

// lookupFailed returns nil when the window check may be skipped.
func (e *PolicyEngine) lookupFailed(ctx context.Context, menuID int64, cause error) error {
	if e.policy.LookupMode == bookings.LookupBestEffort {
		log.FromContext(ctx).
			WithField("menu_id", menuID).
			WithField("error", cause).
			Warn("Menu lookup failed, skipping time window check")
		return nil
	}

	if errors.Is(cause, domain.ErrLookupFailed) {
		return cause
	}
	return fmt.Errorf("%w: %w", menus.ErrLookupFailed, cause)
}
