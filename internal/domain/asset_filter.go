package domain

// AssetFilter narrows an asset search. All set conditions compose
// conjunctively. Manufacturer, ModelNumber and Search are
// case-insensitive substring matches (Search runs against the asset
// tag); AssignedTo is an exact user id match.
type AssetFilter struct {
	Category     *AssetCategory
	Status       *AssetStatus
	Manufacturer string
	ModelNumber  string
	AssignedTo   *string
	Search       string
}

// Empty reports whether no condition is set.
func (f AssetFilter) Empty() bool {
	return f.Category == nil && f.Status == nil && f.Manufacturer == "" &&
		f.ModelNumber == "" && f.AssignedTo == nil && f.Search == ""
}
