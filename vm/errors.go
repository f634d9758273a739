package vm

import "fmt"

// CycleLimitError reports that the cycle budget ran out before the program
// finished. Output flushed before the abort remains valid; the run itself is
// over. Distinguish it from parse failures with errors.As.
type CycleLimitError struct {
	Limit uint64 // the budget the run started with
}

func (e *CycleLimitError) Error() string {
	return fmt.Sprintf("cycle budget exhausted after %d instruction executions", e.Limit)
}
