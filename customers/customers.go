package customers

import "time"

// Customer is the business-level record for an authenticated principal,
// keyed by the subject the identity provider asserts. It is provisioned
// lazily on first login from the provider's userinfo profile.
type Customer struct {
	ID         string    `json:"id,omitempty"`          // Unique identifier for the customer
	Subject    string    `json:"subject,omitempty"`     // Stable subject id from the identity provider
	Username   string    `json:"username,omitempty"`    // Preferred username from userinfo
	Email      string    `json:"email,omitempty"`       // Customer's email address
	GivenName  string    `json:"given_name,omitempty"`  // First name
	FamilyName string    `json:"family_name,omitempty"` // Last name
	CreatedAt  time.Time `json:"created_at,omitempty"`  // When the record was provisioned
}
