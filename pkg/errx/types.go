package errx

// Type categorizes an error by how the caller should react to it.
type Type string

const (
	// TypeInternal is a bug or broken invariant inside this process
	TypeInternal Type = "INTERNAL"

	// TypeValidation is bad input or configuration
	TypeValidation Type = "VALIDATION"

	// TypeNotFound is a missing file, object or key
	TypeNotFound Type = "NOT_FOUND"

	// TypeExternal is a failure reported by storage or another backend
	TypeExternal Type = "EXTERNAL"

	// TypeWork is a failure of one or more units of work
	TypeWork Type = "WORK"

	// TypeCanceled is a cancellation or deadline coming from a context
	TypeCanceled Type = "CANCELED"
)

// String returns the string representation of the error type
func (t Type) String() string {
	return string(t)
}
