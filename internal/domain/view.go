package domain

// AssetWithRelations is the denormalized read-side projection of an
// asset. Model always resolves for a well-formed asset; the other
// relations are legitimately optional and callers must check presence.
type AssetWithRelations struct {
	Asset
	Model              AssetModel          `json:"model"`
	AssignedUser       *User               `json:"assigned_user"`
	CurrentAssignment  *Assignment         `json:"current_assignment"`
	MaintenanceRecords []MaintenanceRecord `json:"maintenance_records"`
	Disposal           *Disposal           `json:"disposal"`
}

// AssignmentWithAsset pairs a closed assignment period with the
// hydrated view of the asset it referenced. The embedded view's
// CurrentAssignment is always absent: the view is built in the context
// of a past period, even if the asset is open-assigned elsewhere now.
type AssignmentWithAsset struct {
	Assignment
	Asset AssetWithRelations `json:"asset"`
}

// UserAssets is the per-user projection: currently held assets plus
// the user's closed assignment history.
type UserAssets struct {
	User            User                  `json:"user"`
	CurrentAssets   []AssetWithRelations  `json:"current_assets"`
	PastAssignments []AssignmentWithAsset `json:"past_assignments"`
}
