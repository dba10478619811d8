package dto

import "time"

// CustomerRequest alta de cliente.
type CustomerRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CustomerResponse salida de cliente.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
