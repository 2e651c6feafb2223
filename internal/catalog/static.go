package catalog

import "context"

// Static is an in-memory catalog.
type Static struct {
	providers []Provider
}

// NewStatic copies ps into a fixed catalog.
func NewStatic(ps []Provider) *Static {
	return &Static{providers: clone(ps)}
}

func (s *Static) Providers(ctx context.Context) ([]Provider, error) {
	if len(s.providers) == 0 {
		return nil, ErrEmptyCatalog
	}
	return clone(s.providers), nil
}
