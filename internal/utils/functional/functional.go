package functional

// Map applies a function to each element of a slice and returns a new slice with the results
func Map[T any, U any](slice []T, fn func(T) U) []U {
	result := make([]U, len(slice))
	for i, item := range slice {
		result[i] = fn(item)
	}
	return result
}

// Filter returns a new slice containing only the elements that satisfy the predicate
func Filter[T any](slice []T, predicate func(T) bool) []T {
	result := make([]T, 0)
	for _, item := range slice {
		if predicate(item) {
			result = append(result, item)
		}
	}
	return result
}

// KeyBy indexes a slice by the key returned from fn. Later elements win.
func KeyBy[T any, K comparable](slice []T, fn func(T) K) map[K]T {
	result := make(map[K]T, len(slice))
	for _, item := range slice {
		result[fn(item)] = item
	}
	return result
}

// Page returns the window [offset, offset+limit) of slice, clamped to its bounds.
func Page[T any](slice []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(slice) {
		return []T{}
	}
	end := len(slice)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return slice[offset:end]
}
