package leads

import "context"

// ProviderSummary is the public view of a matched provider returned to
// callers. Phone is the tracking number when the provider has one.
type ProviderSummary struct {
	Slug     string  `json:"slug"`
	Name     string  `json:"name"`
	Practice string  `json:"practice"`
	Phone    string  `json:"phone"`
	Rating   float64 `json:"rating"`
}

// Result is what every distribution call reports. Success is always true;
// Matched is empty (never nil) when matching could not run.
type Result struct {
	Success bool              `json:"success"`
	Matched []ProviderSummary `json:"matched"`
}

// Distributor matches a lead to providers and fans it out to the sinks.
// Implementations must not return sink or matching errors to the caller.
type Distributor interface {
	Distribute(ctx context.Context, lead Lead) Result
}

// DistributorFunc adapts a function to Distributor.
type DistributorFunc func(ctx context.Context, lead Lead) Result

func (f DistributorFunc) Distribute(ctx context.Context, lead Lead) Result {
	return f(ctx, lead)
}
