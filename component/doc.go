// Package component manages the start/stop order of the long-lived pieces
// behind a repository stack: the connectivity monitor, the Redis token
// backend and the telemetry exporters.
//
// Components start in registration order and stop in reverse.
package component
