package ptr

// ToString returns a pointer to s.
func ToString(s string) *string { return &s }

// ToBool returns a pointer to b.
func ToBool(b bool) *bool { return &b }

// ToInt returns a pointer to i.
func ToInt(i int) *int { return &i }

// ToUint returns a pointer to u.
func ToUint(u uint) *uint { return &u }

// Deref returns *p or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
