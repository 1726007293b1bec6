package domain

import "time"

// Assignment is one user-asset assignment period. UnassignedAt is nil
// while the period is open; for a given asset at most one open period
// may exist at any time. Rows are never deleted or reopened.
type Assignment struct {
	ID           int64      `json:"id"`
	AssetID      int64      `json:"asset_id"`
	UserID       string     `json:"user_id"`
	AssignedBy   string     `json:"assigned_by"`
	AssignedAt   time.Time  `json:"assigned_at"`
	UnassignedAt *time.Time `json:"unassigned_at"`
	Notes        *string    `json:"notes"`
}

// Open reports whether the period has not been closed yet.
func (a Assignment) Open() bool { return a.UnassignedAt == nil }
