package llm

// EstimateTokens provides a heuristic token count for text when a backend
// reports no usage: ~4 characters per token, rounded up.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}
