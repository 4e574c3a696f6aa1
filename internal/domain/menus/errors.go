package menus

import "orders/internal/domain"

var (
	ErrSlotNotFound = domain.NewError(domain.ErrNotFound, "menu not found")
	ErrLookupFailed = domain.NewError(domain.ErrLookupFailed, "menu service is unavailable")
)
