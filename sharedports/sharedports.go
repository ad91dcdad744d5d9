package sharedports

import "time"

// SharedPort binds a public port number to a project's tunnel endpoint so
// multiple clients can reach it without their own tunnel.
type SharedPort struct {
	ID          string    `json:"id,omitempty"`
	ProjectID   string    `json:"project_id,omitempty"`
	Port        int       `json:"port,omitempty"`
	Protocol    string    `json:"protocol,omitempty"` // "tcp" or "udp"
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
