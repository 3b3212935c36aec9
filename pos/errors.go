package pos

import "errors"

var (
	// ErrInvalidQuantity is returned by Cart.Add for quantities below 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrNoSelection is returned by Controller.AddToCart when no candidate
	// has been confirmed.
	ErrNoSelection = errors.New("no candidate selected")

	// ErrEmptyCart is returned by Submitter.Commit when the cart has no lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrAlreadyInFlight is returned by Submitter.Commit while another
	// commit is still outstanding.
	ErrAlreadyInFlight = errors.New("a batch commit is already in flight")
)

// CommitError is a business failure reported by the inventory service,
// e.g. insufficient stock. The message is surfaced verbatim and the cart is
// preserved so the operator can correct and retry.
type CommitError struct {
	StatusCode int
	Message    string
}

func (e *CommitError) Error() string {
	return e.Message
}
