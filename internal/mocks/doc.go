// Package mocks provides hand-written test doubles for the store and service
// interfaces.
//
// Each mock exposes one function field per interface method. Unset fields
// fall back to an empty, successful result, and every call is recorded so
// tests can assert on the filters and times a pass used:
//
//	events := &mocks.MockEventStore{
//	    FetchViewsFn: func(ctx context.Context, f store.EventFilter) ([]domain.ViewEvent, error) {
//	        return nil, store.ErrUnavailable
//	    },
//	}
package mocks
