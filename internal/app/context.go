package app

import "context"

// ConfigError reports a wiring mistake, such as reaching for the store from
// code that runs outside the scope it was installed in. It is never caused by
// data or the network.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Msg
}

var (
	ErrNoStore     = &ConfigError{Msg: "no store in context; install one with app.WithStore"}
	ErrStoreExists = &ConfigError{Msg: "a store is already installed in this context"}
)

type storeKey struct{}

// WithStore returns a context carrying s. Only one store may be live per
// context chain, so installing a second one fails with ErrStoreExists.
func WithStore(ctx context.Context, s *Store) (context.Context, error) {
	if s == nil {
		return ctx, &ConfigError{Msg: "cannot install a nil store"}
	}
	if _, ok := ctx.Value(storeKey{}).(*Store); ok {
		return ctx, ErrStoreExists
	}
	return context.WithValue(ctx, storeKey{}, s), nil
}

// FromContext returns the store installed by WithStore, or ErrNoStore.
func FromContext(ctx context.Context) (*Store, error) {
	if ctx == nil {
		return nil, ErrNoStore
	}
	s, ok := ctx.Value(storeKey{}).(*Store)
	if !ok {
		return nil, ErrNoStore
	}
	return s, nil
}

// MustFromContext is like FromContext but panics when no store is installed.
func MustFromContext(ctx context.Context) *Store {
	s, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return s
}
