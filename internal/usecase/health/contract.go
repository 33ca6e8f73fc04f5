package health

import "context"

// StorePinger checks entity store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker checks document index availability.
type IndexChecker interface {
	Check(ctx context.Context) error
}
