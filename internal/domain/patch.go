package domain

// Patch is a tri-state update field: absent (leave the column alone),
// set to a value, or set to null. The zero value is absent.
type Patch[T any] struct {
	present bool
	value   *T
}

// PatchValue returns a patch that sets the target to v.
func PatchValue[T any](v T) Patch[T] {
	return Patch[T]{present: true, value: &v}
}

// PatchNull returns a patch that clears the target.
func PatchNull[T any]() Patch[T] {
	return Patch[T]{present: true}
}

// Present reports whether the patch was supplied at all.
func (p Patch[T]) Present() bool { return p.present }

// Ptr returns the value to store: nil clears the target. Only
// meaningful when Present is true.
func (p Patch[T]) Ptr() *T { return p.value }

// Apply returns the patched value given the current one.
func (p Patch[T]) Apply(current *T) *T {
	if !p.present {
		return current
	}
	return p.value
}
