package attendance

// StructuralError aborts an upload before any row is touched: wrong
// extension, empty content, unusable headers. No history record exists for
// this failure class.
type StructuralError struct {
	Code    string
	Message string
	Details any
}

func (e *StructuralError) Error() string {
	return e.Message
}
