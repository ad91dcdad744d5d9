package projects

import "time"

// Project is a customer's tunnel project: a named grouping of tunnel
// endpoints and their shared ports.
type Project struct {
	ID          string    `json:"id,omitempty"`
	CustomerID  string    `json:"customer_id,omitempty"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
