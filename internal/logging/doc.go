// Package logging builds the slog loggers sunweather uses.
//
// It offers a human-oriented console handler (colored when stdout is a
// terminal) and a JSON handler, level parsing, component loggers, and
// context-derived fields so every stage logs the run id, stage, and band
// under the same keys.
package logging
