package domain

// StopID identifies a route stop. Stops are compared by equality only.
type StopID int64

// Role values carried in the caller's token.
const (
	RoleRider  = "rider"
	RoleDriver = "driver"
	RoleAdmin  = "admin"
)

// RequestContext carries authenticated caller info when available.
type RequestContext struct {
	UserID    int64  `json:"userId"`
	Role      string `json:"role"`
	RequestID string `json:"requestId,omitempty"`
}
