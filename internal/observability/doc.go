// Package observability provides structured logging and in-process metrics
// for the moderation backend.
//
// Logging is zap-based and configured from the environment (LOG_LEVEL,
// LOG_FORMAT). Metrics are lightweight in-memory counters over submission
// outcomes and inference failures, exposed through the metrics endpoint.
package observability
