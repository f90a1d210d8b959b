package entity

// CompletionRequest is the input to the LLM call primitive: a fully
// assembled message list plus sampling parameters. N > 1 asks the
// provider for that many independent completions of the same context.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	N           int       `json:"n"`
}

// CandidateSet holds the raw completions of one generation call.
// Insertion order is generation order and is the only way candidates
// are referenced later (index-based selection).
type CandidateSet []string

// SelectionResult is the selector's verdict: a 0-based index into the
// candidate set plus the model's stated justification.
type SelectionResult struct {
	ChosenIndex int    `json:"chosen_index"`
	Rationale   string `json:"rationale"`
}

// ValidSentinel is the exact literal a validator call must return for
// the valid path. The comparison is byte-for-byte; "Valid" or "VALID."
// are invalid verdicts. Kept deliberately strict to match the observed
// contract.
const ValidSentinel = "VALID"

// ValidationVerdict is either valid or invalid-with-reason. For
// invalid verdicts Reason carries the validator's full output.
type ValidationVerdict struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}
