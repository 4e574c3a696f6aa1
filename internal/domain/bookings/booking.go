package bookings

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

type Booking struct {
	ID        int64     `json:"booking_id" db:"booking_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	MenuID    int64     `json:"menu_id" db:"menu_id"`
	Status    Status    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (b Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// Patch holds the fields of a partial update. Nil fields are left untouched.
type Patch struct {
	MenuID *int64
	Status *Status
}

func (p Patch) IsEmpty() bool {
	return p.MenuID == nil && p.Status == nil
}

// Apply returns b with the supplied fields of p merged in.
func (p Patch) Apply(b Booking) Booking {
	if p.MenuID != nil {
		b.MenuID = *p.MenuID
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	return b
}

type Filter struct {
	UserID *int64
}
