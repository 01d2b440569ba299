package generator

// Reply is the outcome of one Generate call. Text is always non-empty.
type Reply struct {
	Text string
	// Fallback is set when the completion request failed and Text is the
	// placeholder. Nothing was written to memory in that case.
	Fallback bool
	// Attempts is the number of completion requests issued.
	Attempts int
	// Repeat is set when the accepted text still matched memory or the last
	// reply after the final attempt.
	Repeat bool
	// Err holds the request failure behind a fallback.
	Err error
}
