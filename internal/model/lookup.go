package model

// LookupOutcome constants describe how one key lookup ended.
const (
	// OutcomeResolved means the key returned at least one class.
	OutcomeResolved LookupOutcome = "resolved"
	// OutcomeNotFound means the service answered with no matching class.
	OutcomeNotFound LookupOutcome = "not_found"
	// OutcomeUnparseable means the response was not a well-formed result set.
	OutcomeUnparseable LookupOutcome = "unparseable"
	// OutcomeTimeout means the lookup exceeded its per-call timeout.
	OutcomeTimeout LookupOutcome = "timeout"
	// OutcomeFailed means a transport failure was skipped by policy.
	OutcomeFailed LookupOutcome = "failed"
)

// LookupOutcome is the category of a single key lookup.
type LookupOutcome string

// Resolution is the result of resolving one key to ontology classes.
// Classes is empty for every outcome except OutcomeResolved.
type Resolution struct {
	Key     Key
	Classes []string
	Outcome LookupOutcome
}

// NewResolution derives the outcome from the classes found.
func NewResolution(key Key, classes []string) Resolution {
	outcome := OutcomeResolved
	if len(classes) == 0 {
		outcome = OutcomeNotFound
	}
	return Resolution{Key: key, Classes: classes, Outcome: outcome}
}
