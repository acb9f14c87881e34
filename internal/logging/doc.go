// Package logging builds slog loggers for the samplegraph CLI.
//
// It provides console and JSON handlers, the standardized structured field
// keys shared across components, and helpers such as NewComponentLogger and
// NewNop that keep call sites terse. Construct loggers through NewFromConfig
// so the format and level always match the loaded configuration.
package logging
