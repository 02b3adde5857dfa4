// Package service contains the aggregate publisher: the application layer
// that fetches event snapshots through the store interfaces and runs the pure
// domain aggregations over them.
//
// Key components:
//
// 1. InsightsService:
//   - GlobalInsights: sessions, paths, transitions, trending and search quality
//   - UserInsights: progress, prerequisite unlock state and achievements
//
// 2. Snapshot fetching:
//   - Every fetch is bounded by an explicit window and a context timeout
//   - Independent fetches run concurrently and the first failure cancels the rest
//
// 3. Error Handling:
//   - Malformed records are absorbed and reported as skipped counts
//   - Pass failures are returned as *AggregationError with a Kind the API
//     layer maps to a status code
//   - A failed pass never returns a partial result
//
// The service layer depends on domain packages and store interfaces, never on
// specific infrastructure implementations.
package service
