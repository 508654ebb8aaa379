// Package order holds the in-progress order and the rules that keep it
// consistent while several screens edit it.
//
// # Overview
//
// Store is the single source of truth for "what is in the cart". The item
// selection screen sends fine-grained edits (quantity taps, option toggles),
// the scheduling screen sends bulk saves of an order it assembled itself, and
// the checkout screen reads the order and clears it once payment succeeds.
// Those producers interleave: a bulk save issued before a tap may land after
// it. Store decides which write wins.
//
// # Invariants
//
//   - TotalItems and TotalAmount are always recomputed from Items. Declared
//     totals supplied by a caller are never trusted.
//   - An item whose quantity drops to zero is removed, never kept as a
//     zero-quantity row.
//   - The interaction log is append-only. Only ClearOrder and
//     ResetInteractions drop entries.
//
// # Protection window
//
// AddOrUpdateItem, UpdateItemQuantity and RemoveItem open a protection window
// (2s by default). While it is open, SaveOrderData is rejected:
//
//	tap "+"            -> UpdateItemQuantity  (window opens at t0)
//	debounced save     -> SaveOrderData       (t0+300ms: rejected)
//	later save         -> SaveOrderData       (t0+2.1s: accepted if consistent)
//
// The window is checked lazily on every read; there is no timer. Option edits
// do not open it because they do not change totals.
//
// # Stale writes
//
// SaveOrderData also rejects a candidate whose declared totals disagree with
// its own items, and, while an order exists, a candidate matching the
// configured StaleSignature (280 over 4 items unless configured otherwise).
//
// # Results
//
// No operation returns an error. Each returns a Result with Outcome Applied,
// NoOp (unknown item id or address type) or Rejected (bulk save refused, or
// an item with a negative price), and logs the NoOp and Rejected paths. Callers re-read the store instead of branching.
package order
