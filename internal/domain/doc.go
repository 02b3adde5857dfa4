// Package domain contains the core entities of the insights engine: the
// immutable view and search facts read from the event log, the content
// catalog, and the derived aggregate records (sessions, paths, transitions,
// trending, search quality, progress and achievements).
//
// Derived records are plain values. They are produced by the pure packages
// under domain/ and carry no behavior beyond small accessors.
package domain
