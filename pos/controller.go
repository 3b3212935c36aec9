package pos

import "context"

// InventoryAPI is the full client surface the controller needs.
type InventoryAPI interface {
	CatalogFetcher
	BatchSubmitter
}

// Controller owns the stock-out session state: the catalog snapshot, the
// active query and its candidates, the selection navigator, the cart and
// the checkout submitter. All mutations go through it, one discrete step at
// a time; the submitter's in-flight guard is the only mutual exclusion.
type Controller struct {
	repo      *CatalogRepository
	nav       Navigator
	cart      *Cart
	submitter *Submitter

	query    string
	selected *Item
}

// NewController wires a session against the given inventory client.
func NewController(client InventoryAPI) *Controller {
	repo := NewCatalogRepository(client)
	return &Controller{
		repo:      repo,
		cart:      NewCart(),
		submitter: NewSubmitter(client, repo),
	}
}

// Load fetches the catalog snapshot. The previous snapshot (or an empty
// one) stays in place when the fetch fails.
func (ctl *Controller) Load(ctx context.Context) error {
	return ctl.repo.Load(ctx)
}

// Catalog exposes the snapshot repository.
func (ctl *Controller) Catalog() *CatalogRepository {
	return ctl.repo
}

// Search runs a server-side filtered load for the simple search variant.
func (ctl *Controller) Search(ctx context.Context, query string) ([]Item, error) {
	return ctl.repo.LoadFiltered(ctx, query)
}

// SetQuery updates the active query fragment and recomputes the candidate
// list synchronously against the current snapshot.
func (ctl *Controller) SetQuery(query string) {
	ctl.query = query
	ctl.nav.SetCandidates(Match(ctl.repo.Snapshot(), query))
}

// Query returns the active query text.
func (ctl *Controller) Query() string {
	return ctl.query
}

// Candidates returns the current candidate list.
func (ctl *Controller) Candidates() []Item {
	return ctl.nav.Candidates()
}

// Highlight returns the highlighted candidate index.
func (ctl *Controller) Highlight() int {
	return ctl.nav.Highlight()
}

// Next moves the highlight to the next candidate, wrapping around.
func (ctl *Controller) Next() {
	ctl.nav.Next()
}

// Prev moves the highlight to the previous candidate, wrapping around.
func (ctl *Controller) Prev() {
	ctl.nav.Prev()
}

// Confirm picks the highlighted candidate. The query text becomes the
// candidate's code and the candidate list is cleared; the caller moves
// focus to quantity entry.
func (ctl *Controller) Confirm() (Item, bool) {
	item, ok := ctl.nav.Confirm()
	if !ok {
		return Item{}, false
	}
	ctl.selected = &item
	ctl.query = item.Code
	return item, true
}

// Select picks the candidate at index i directly (pointer selection).
func (ctl *Controller) Select(i int) (Item, bool) {
	item, ok := ctl.nav.Select(i)
	if !ok {
		return Item{}, false
	}
	ctl.selected = &item
	ctl.query = item.Code
	return item, true
}

// Selected returns the last confirmed candidate, if any.
func (ctl *Controller) Selected() (Item, bool) {
	if ctl.selected == nil {
		return Item{}, false
	}
	return *ctl.selected, true
}

// AddToCart places the confirmed candidate into the cart with the given
// quantity, then clears the selection and query for the next entry. Without
// a confirmed candidate or with a quantity below 1 the cart is unchanged.
func (ctl *Controller) AddToCart(quantity int) error {
	if ctl.selected == nil {
		return ErrNoSelection
	}
	if err := ctl.cart.Add(*ctl.selected, quantity); err != nil {
		return err
	}
	ctl.submitter.ResetRequestID()
	ctl.selected = nil
	ctl.query = ""
	return nil
}

// RemoveFromCart drops a pending line. Idempotent.
func (ctl *Controller) RemoveFromCart(itemID string) {
	ctl.cart.Remove(itemID)
	ctl.submitter.ResetRequestID()
}

// SetCartQuantity edits a pending line in place, clamping below 1 up to 1.
func (ctl *Controller) SetCartQuantity(itemID string, quantity int) {
	ctl.cart.SetQuantity(itemID, quantity)
	ctl.submitter.ResetRequestID()
}

// Cart exposes the pending lines.
func (ctl *Controller) Cart() *Cart {
	return ctl.cart
}

// Submitter exposes the checkout submitter state.
func (ctl *Controller) Submitter() *Submitter {
	return ctl.submitter
}

// Commit submits the cart as one atomic batch. See Submitter.Commit.
func (ctl *Controller) Commit(ctx context.Context) (*CommitAck, error) {
	return ctl.submitter.Commit(ctx, ctl.cart)
}
