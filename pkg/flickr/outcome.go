package flickr

// Outcome tags the result of a remote operation whose resource may
// legitimately be absent. Callers receive a usable empty payload for
// OutcomeAbsent and OutcomeFailed and decide their own fallback explicitly
// instead of relying on blanket error swallowing.
type Outcome int

const (
	// OutcomeOK means the remote resource existed and was fetched
	OutcomeOK Outcome = iota
	// OutcomeAbsent means the resource legitimately does not exist
	// (no geo data, no comments, unknown user)
	OutcomeAbsent
	// OutcomeFailed means the call failed after retries were exhausted
	OutcomeFailed
)

// String returns a human-readable outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeAbsent:
		return "absent"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}
