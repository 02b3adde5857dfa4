// Package session groups raw view events into discrete sessions.
package session

import (
	"fmt"
	"sort"

	"github.com/phrazzld/scry-insights/internal/domain"
)

// dayLayout is the date bucket used in inferred session keys.
const dayLayout = "2006-01-02"

// Result holds reconstructed sessions and the number of events that were
// excluded because they were malformed.
type Result struct {
	Sessions []domain.Session
	Skipped  int
}

// Reconstruct groups one user's view events into sessions.
//
// Events carrying a session id are grouped strictly by that id. Events without
// one start a new session whenever the gap to the previous such event exceeds
// params.InactivityGap or a calendar day boundary is crossed. Malformed events
// are excluded and counted in Result.Skipped.
//
// The input slice is not modified and its order does not affect the output:
// events are ordered by timestamp, then ingestion id.
func Reconstruct(events []domain.ViewEvent, params *Params) (Result, error) {
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	valid, skipped := validEvents(events)
	sortEvents(valid)

	sessions := group(valid, params)
	sortSessions(sessions)

	return Result{Sessions: sessions, Skipped: skipped}, nil
}

// ReconstructAll partitions events by user and reconstructs each user's
// sessions. All anonymous events share one stream. Sessions from every user
// are returned in start order.
func ReconstructAll(events []domain.ViewEvent, params *Params) (Result, error) {
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	valid, skipped := validEvents(events)

	byUser := make(map[string][]domain.ViewEvent)
	for _, e := range valid {
		key := e.UserKey()
		byUser[key] = append(byUser[key], e)
	}

	users := make([]string, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Strings(users)

	var sessions []domain.Session
	for _, u := range users {
		stream := byUser[u]
		sortEvents(stream)
		sessions = append(sessions, group(stream, params)...)
	}
	sortSessions(sessions)

	return Result{Sessions: sessions, Skipped: skipped}, nil
}

func validEvents(events []domain.ViewEvent) ([]domain.ViewEvent, int) {
	valid := make([]domain.ViewEvent, 0, len(events))
	skipped := 0
	for _, e := range events {
		if err := e.Validate(); err != nil {
			skipped++
			continue
		}
		valid = append(valid, e)
	}
	return valid, skipped
}

func sortEvents(events []domain.ViewEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Before(events[j])
	})
}

// group assumes events are sorted and belong to one user.
func group(events []domain.ViewEvent, params *Params) []domain.Session {
	explicit := make(map[string]int)
	var sessions []domain.Session

	current := -1
	var last domain.ViewEvent
	perDay := make(map[string]int)

	for _, e := range events {
		if e.HasSessionID() {
			id := *e.SessionID
			idx, ok := explicit[id]
			if !ok {
				idx = len(sessions)
				explicit[id] = idx
				sessions = append(sessions, domain.Session{Key: id, UserKey: e.UserKey()})
			}
			sessions[idx].Events = append(sessions[idx].Events, e)
			continue
		}

		if current < 0 || startsNewSession(last, e, params) {
			day := e.Timestamp.In(params.Location).Format(dayLayout)
			perDay[day]++
			key := fmt.Sprintf("%s/%s", e.UserKey(), day)
			if n := perDay[day]; n > 1 {
				key = fmt.Sprintf("%s#%d", key, n)
			}
			sessions = append(sessions, domain.Session{Key: key, UserKey: e.UserKey()})
			current = len(sessions) - 1
		}
		sessions[current].Events = append(sessions[current].Events, e)
		last = e
	}

	return sessions
}

func startsNewSession(prev, next domain.ViewEvent, params *Params) bool {
	if next.Timestamp.Sub(prev.Timestamp) > params.InactivityGap {
		return true
	}
	py, pm, pd := prev.Timestamp.In(params.Location).Date()
	ny, nm, nd := next.Timestamp.In(params.Location).Date()
	return py != ny || pm != nm || pd != nd
}

func sortSessions(sessions []domain.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i].Events[0], sessions[j].Events[0]
		if a.Before(b) {
			return true
		}
		if b.Before(a) {
			return false
		}
		return sessions[i].Key < sessions[j].Key
	})
}
