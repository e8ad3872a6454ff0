package chunker

// TokenEstimator approximates the token count of a piece of text.
type TokenEstimator interface {
	Estimate(text string) int
}

// CharEstimator estimates tokens as byte length divided by CharsPerToken.
//
// This is a deliberate simplification rather than real tokenization: it is
// reasonably close for English prose and code, and over- or under-counts for
// scripts whose characters take several bytes or several tokens.
type CharEstimator struct {
	CharsPerToken int
}

// DefaultEstimator is the len/4 approximation.
var DefaultEstimator TokenEstimator = CharEstimator{CharsPerToken: 4}

// Estimate implements TokenEstimator.
func (e CharEstimator) Estimate(text string) int {
	per := e.CharsPerToken
	if per <= 0 {
		per = 4
	}
	return len(text) / per
}

// EstimatorFunc adapts a plain function to TokenEstimator.
type EstimatorFunc func(text string) int

// Estimate implements TokenEstimator.
func (f EstimatorFunc) Estimate(text string) int { return f(text) }
