// Package ciutil detects CI environments and resolves environment variables
// with legacy fallbacks, so integration tests can decide between skipping and
// failing when their database is missing.
package ciutil
