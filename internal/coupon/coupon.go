// Package coupon checks cart coupon codes against registry files of known codes.
package coupon

import (
	"context"
)

// Registry decides whether a coupon code may be applied to a cart.
type Registry interface {
	// Validate returns model.ErrInvalidCoupon when code is not accepted.
	Validate(ctx context.Context, code string) error

	// Close releases resources held by the registry.
	Close() error
}

// CodeSet is a set of coupon codes for fast lookup.
type CodeSet interface {
	Contains(code string) bool
	Size() int
}

// Loader reads one gzipped registry file.
type Loader interface {
	Load(ctx context.Context, path string) (CodeSet, error)
}
