package watcher

import (
	"context"

	"github.com/samvad-hq/upgates-go/pkg/publishers"
	"github.com/samvad-hq/upgates-go/pkg/upgates"
)

// OrderLister lists order pages from the Upgates API.
type OrderLister interface {
	List(ctx context.Context, params *upgates.ListOrdersParams) (*upgates.OrderList, error)
}

// EventPublisher publishes order events downstream and reports how many sinks accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// RevisionStore remembers published revisions and the listing cursor.
type RevisionStore interface {
	SeenRevision(key string) (bool, error)
	MarkRevision(key string) error
	Cursor() (string, error)
	SetCursor(value string) error
}
