package domain

import "time"

// Customer is the local projection of a customer owned by the customer service.
type Customer struct {
	ID        int64
	Name      string
	Active    bool
	UpdatedAt time.Time
}
