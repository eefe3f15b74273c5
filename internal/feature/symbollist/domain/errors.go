// Package domain holds the sentinel errors of the symbollist feature.
package domain

import "errors"

// ErrMarketRequired is returned when an operation needs a single market but none was given.
var ErrMarketRequired = errors.New("market is required")
