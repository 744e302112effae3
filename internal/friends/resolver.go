package friends

// Resolve derives the relationship between the viewer and target from the
// viewer's three lists. Precedence is friends > sent > received > none: an
// accepted relationship is authoritative and must never be shadowed by a
// stale pending request, and the remaining order is fixed so the result is
// deterministic even if the server briefly returns overlapping lists during
// replication lag.
//
// Only pending requests count. Rows the target cannot be extracted from are
// non-matches, never errors.
func Resolve(targetID string, l Lists) Relationship {
	target := normalizeID(targetID)
	if target == "" {
		return Relationship{State: StateNone}
	}

	for _, f := range l.Friends {
		if normalizeID(f.ID) == target {
			return Relationship{State: StateFriends}
		}
	}

	for _, r := range l.Sent {
		if r.Status != StatusPending {
			continue
		}
		if counterpartMatches(r.To, r.User, target) {
			return Relationship{State: StateSent, RequestID: r.ID}
		}
	}

	for _, r := range l.Received {
		if r.Status != StatusPending {
			continue
		}
		if counterpartMatches(r.From, r.User, target) {
			return Relationship{State: StateReceived, RequestID: r.ID}
		}
	}

	return Relationship{State: StateNone}
}

// counterpartMatches compares the directional field first and falls back to
// the generic userId field on routes that only send one side.
func counterpartMatches(directional, generic UserRef, target string) bool {
	if id := normalizeID(directional.ID); id != "" {
		return id == target
	}
	return normalizeID(generic.ID) == target
}
