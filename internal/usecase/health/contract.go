package health

import "context"

// CatalogPinger checks catalog backend availability.
type CatalogPinger interface {
	Ping(ctx context.Context) error
}

// CachePinger checks suggestion cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
