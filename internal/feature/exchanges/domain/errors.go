// Package domain defines domain-level errors for the exchanges feature.
package domain

import "errors"

// Errors returned by the symbol pipeline. Callers match them with errors.Is;
// the concrete error always wraps one of these with exchange-specific detail.
var (
	// ErrConfiguration indicates a malformed exchange profile or ticker rule.
	// It is raised at construction time and is never recovered.
	ErrConfiguration = errors.New("invalid exchange configuration")

	// ErrSourceUnavailable indicates that the source page could not be retrieved or parsed.
	ErrSourceUnavailable = errors.New("symbol source unavailable")

	// ErrTableNotFound indicates that the configured table index is out of range for the page.
	ErrTableNotFound = errors.New("symbol table not found")

	// ErrColumnNotFound indicates that the ticker column is missing from the fetched table.
	ErrColumnNotFound = errors.New("ticker column not found")

	// ErrDataFormat indicates a corrupt cached symbol table.
	ErrDataFormat = errors.New("malformed cached symbol table")

	// ErrUnknownExchange indicates that the requested exchange is not configured.
	ErrUnknownExchange = errors.New("unknown exchange")
)
