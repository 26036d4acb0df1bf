// Package report holds completion sinks for drainx: a logger, an in-memory
// recorder, a Redis-backed completion log and a fan-out Chain.
package report
