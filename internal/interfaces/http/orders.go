package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"orders/internal/domain"
	"orders/internal/domain/bookings"
)

var errInvalidBody = domain.NewError(domain.ErrBadRequest, "invalid request body")

type CreateOrderRequest struct {
	MenuID int64   `json:"menu_id"`
	Status *string `json:"status"`
}

// UpdateOrderRequest ignores user_id: the owner of a booking never changes.
type UpdateOrderRequest struct {
	MenuID *int64  `json:"menu_id"`
	Status *string `json:"status"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func parseID(c echo.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewError(domain.ErrBadRequest, "invalid "+param)
	}
	return id, nil
}

func toStatus(s *string) *bookings.Status {
	if s == nil {
		return nil
	}
	status := bookings.Status(*s)
	return &status
}

func (s *Server) ListOrdersHandler(c echo.Context) error {
	var userID *int64
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.NewError(domain.ErrBadRequest, "invalid user_id")
		}
		userID = &id
	}

	list, err := s.bookings.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return respondList(c, list)
}

func (s *Server) ListMyOrdersHandler(c echo.Context) error {
	list, err := s.bookings.ListMine(c.Request().Context())
	if err != nil {
		return err
	}

	return respondList(c, list)
}

func (s *Server) GetOrderHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	order, err := s.bookings.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, order)
}

func (s *Server) CreateOrderHandler(c echo.Context) error {
	var request CreateOrderRequest
	if err := c.Bind(&request); err != nil {
		return errInvalidBody
	}

	order, err := s.bookings.Create(c.Request().Context(), request.MenuID, toStatus(request.Status))
	if err != nil {
		return err
	}

	return respondData(c, http.StatusCreated, order)
}

func (s *Server) UpdateOrderHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var request UpdateOrderRequest
	if err := c.Bind(&request); err != nil {
		return errInvalidBody
	}

	order, err := s.bookings.Update(c.Request().Context(), id, bookings.Patch{
		MenuID: request.MenuID,
		Status: toStatus(request.Status),
	})
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, order)
}

func (s *Server) UpdateOrderStatusHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var request UpdateStatusRequest
	if err := c.Bind(&request); err != nil {
		return errInvalidBody
	}
	if request.Status == "" {
		return domain.NewError(bookings.ErrMissingFields, "status is required")
	}

	order, err := s.bookings.UpdateStatus(c.Request().Context(), id, bookings.Status(request.Status))
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, order)
}

func (s *Server) CancelOrderHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	order, err := s.bookings.Cancel(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, order)
}

func (s *Server) DeleteOrderHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := s.bookings.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "order deleted")
}
