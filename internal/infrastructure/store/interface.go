package store

import "context"

// StateStore loads and saves the whole ledger document. Save is a full overwrite;
// there is no cross-process locking, so concurrent writers are last-writer-wins.
type StateStore interface {
	// Load returns the saved document, or Bootstrap() when nothing was saved yet.
	Load(ctx context.Context) (*Document, error)

	// Save replaces the saved document.
	Save(ctx context.Context, doc *Document) error
}
