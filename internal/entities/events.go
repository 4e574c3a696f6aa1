package entities

import "time"

type Event interface {
	EventHeader() EventHeader
}

type BookingCreated_v1 struct {
	Header EventHeader `json:"header"`

	BookingID int64     `json:"booking_id"`
	UserID    int64     `json:"user_id"`
	MenuID    int64     `json:"menu_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (e BookingCreated_v1) EventHeader() EventHeader {
	return e.Header
}

type BookingUpdated_v1 struct {
	Header EventHeader `json:"header"`

	BookingID      int64  `json:"booking_id"`
	MenuID         int64  `json:"menu_id"`
	PreviousMenuID int64  `json:"previous_menu_id"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status"`
}

func (e BookingUpdated_v1) EventHeader() EventHeader {
	return e.Header
}

type BookingCancelled_v1 struct {
	Header EventHeader `json:"header"`

	BookingID   int64     `json:"booking_id"`
	UserID      int64     `json:"user_id"`
	MenuID      int64     `json:"menu_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

func (e BookingCancelled_v1) EventHeader() EventHeader {
	return e.Header
}

type BookingDeleted_v1 struct {
	Header EventHeader `json:"header"`

	BookingID int64 `json:"booking_id"`
	UserID    int64 `json:"user_id"`
}

func (e BookingDeleted_v1) EventHeader() EventHeader {
	return e.Header
}
