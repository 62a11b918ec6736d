package matcher

// InvalidInputError reports a contract violation in the caller-supplied
// collections (nil entries). It is the only error the engine returns for
// well-formed Go values; all domain-level ambiguity is expressed as data in
// the MatchResult instead.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}
