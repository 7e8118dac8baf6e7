package utils

// Value dereferences v, returning the zero value for nil
func Value[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// PtrIfSet returns nil for the zero value, so optional update fields stay unset
func PtrIfSet[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

// Coalesce returns the first value that is not the zero value
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
