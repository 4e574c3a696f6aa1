package services

import (
	"context"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"golang.org/x/sync/errgroup"

	"orders/internal/application/usecases/booking"
	"orders/internal/domain/bookings"
	"orders/internal/domain/menus"
	"orders/internal/identity"
)

const DefaultEnrichConcurrency = 8

type BookingsReader interface {
	GetByID(ctx context.Context, id int64) (bookings.Booking, error)
	List(ctx context.Context, filter bookings.Filter) ([]bookings.Booking, error)
}

type MenuLookup interface {
	Lookup(ctx context.Context, menuID int64) (menus.Slot, error)
}

type PolicyEngine interface {
	Create(ctx context.Context, cmd booking.CreateCommand) (booking.CreateResult, error)
	Update(ctx context.Context, id int64, patch bookings.Patch) (bookings.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status bookings.Status) (bookings.Booking, error)
	Cancel(ctx context.Context, id int64) (bookings.Booking, error)
	Delete(ctx context.Context, id int64) error
}

// EnrichedBooking is a booking with the menu slot it references, as seen at
// read time.
type EnrichedBooking struct {
	bookings.Booking

	MenuDetails            *menus.Slot `json:"menu_details"`
	MenuDetailsUnavailable bool        `json:"menu_details_unavailable,omitempty"`
}

// BookingService is the entry point for the transport layer. Every call
// requires a verified user in ctx.
type BookingService struct {
	reader      BookingsReader
	engine      PolicyEngine
	menus       MenuLookup
	concurrency int
}

func NewBookingService(reader BookingsReader, engine PolicyEngine, menuLookup MenuLookup, concurrency int) *BookingService {
	if concurrency <= 0 {
		concurrency = DefaultEnrichConcurrency
	}
	return &BookingService{
		reader:      reader,
		engine:      engine,
		menus:       menuLookup,
		concurrency: concurrency,
	}
}

func (s *BookingService) Create(ctx context.Context, menuID int64, status *bookings.Status) (EnrichedBooking, error) {
	userID, err := identity.UserID(ctx)
	if err != nil {
		return EnrichedBooking{}, err
	}

	result, err := s.engine.Create(ctx, booking.CreateCommand{
		UserID: userID,
		MenuID: menuID,
		Status: status,
	})
	if err != nil {
		return EnrichedBooking{}, err
	}

	if result.Slot != nil {
		return EnrichedBooking{Booking: result.Booking, MenuDetails: result.Slot}, nil
	}
	return s.enrichOne(ctx, result.Booking), nil
}

func (s *BookingService) Get(ctx context.Context, id int64) (EnrichedBooking, error) {
	if _, err := identity.UserID(ctx); err != nil {
		return EnrichedBooking{}, err
	}

	b, err := s.reader.GetByID(ctx, id)
	if err != nil {
		return EnrichedBooking{}, err
	}

	return s.enrichOne(ctx, b), nil
}

// List returns all bookings, or the bookings of userID when it is set.
func (s *BookingService) List(ctx context.Context, userID *int64) ([]EnrichedBooking, error) {
	if _, err := identity.UserID(ctx); err != nil {
		return nil, err
	}

	list, err := s.reader.List(ctx, bookings.Filter{UserID: userID})
	if err != nil {
		return nil, err
	}

	return s.enrich(ctx, list), nil
}

func (s *BookingService) ListMine(ctx context.Context) ([]EnrichedBooking, error) {
	userID, err := identity.UserID(ctx)
	if err != nil {
		return nil, err
	}

	return s.List(ctx, &userID)
}

func (s *BookingService) Update(ctx context.Context, id int64, patch bookings.Patch) (EnrichedBooking, error) {
	if _, err := identity.UserID(ctx); err != nil {
		return EnrichedBooking{}, err
	}

	b, err := s.engine.Update(ctx, id, patch)
	if err != nil {
		return EnrichedBooking{}, err
	}

	return s.enrichOne(ctx, b), nil
}

func (s *BookingService) UpdateStatus(ctx context.Context, id int64, status bookings.Status) (EnrichedBooking, error) {
	if _, err := identity.UserID(ctx); err != nil {
		return EnrichedBooking{}, err
	}

	b, err := s.engine.UpdateStatus(ctx, id, status)
	if err != nil {
		return EnrichedBooking{}, err
	}

	return s.enrichOne(ctx, b), nil
}

func (s *BookingService) Cancel(ctx context.Context, id int64) (EnrichedBooking, error) {
	if _, err := identity.UserID(ctx); err != nil {
		return EnrichedBooking{}, err
	}

	b, err := s.engine.Cancel(ctx, id)
	if err != nil {
		return EnrichedBooking{}, err
	}

	return s.enrichOne(ctx, b), nil
}

func (s *BookingService) Delete(ctx context.Context, id int64) error {
	if _, err := identity.UserID(ctx); err != nil {
		return err
	}

	return s.engine.Delete(ctx, id)
}

func (s *BookingService) enrichOne(ctx context.Context, b bookings.Booking) EnrichedBooking {
	return s.enrich(ctx, []bookings.Booking{b})[0]
}

// enrich looks up every booking's slot concurrently. A failed lookup marks
// that booking's details unavailable and never fails the whole list.
func (s *BookingService) enrich(ctx context.Context, list []bookings.Booking) []EnrichedBooking {
	enriched := make([]EnrichedBooking, len(list))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range list {
		i := i
		g.Go(func() error {
			enriched[i] = EnrichedBooking{Booking: list[i]}

			slot, err := s.menus.Lookup(gctx, list[i].MenuID)
			if err != nil {
				log.FromContext(ctx).
					WithField("booking_id", list[i].ID).
					WithField("menu_id", list[i].MenuID).
					WithField("error", err).
					Warn("Could not fetch menu details for booking")

				enriched[i].MenuDetailsUnavailable = true
				return nil
			}

			enriched[i].MenuDetails = &slot
			return nil
		})
	}

	// goroutines never return an error
	_ = g.Wait()

	return enriched
}
