// Package store defines the read-only interfaces through which the insights
// engine reaches the event logs and the content catalog. The engine never
// writes events; ingestion belongs to the product that emits them.
package store
