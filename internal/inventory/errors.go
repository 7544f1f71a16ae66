package inventory

// Kind discriminates the business-rule failures of a reconciliation batch.
type Kind int

const (
	// KindInsufficientStock means an entry would drive a quantity negative.
	KindInsufficientStock Kind = iota
	// KindInvalidProductReference means an entry names an unknown product.
	KindInvalidProductReference
)

// BatchError reports a rejected batch. Index points at the offending
// entry in the post-coalescing list so the caller can highlight the line.
type BatchError struct {
	Kind  Kind
	Index int
}

func (e *BatchError) Error() string {
	switch e.Kind {
	case KindInvalidProductReference:
		return "Product does not exist"
	default:
		return "Not enough stock"
	}
}
