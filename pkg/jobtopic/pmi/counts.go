package pmi

import "sort"

// Counter maintains document-level co-occurrence counts for a fixed
// vocabulary. Topic coherence uses it to score top-word pairs.
type Counter struct {
	N     int64               // total number of documents
	Nx    map[string]int64    // document frequency per token
	Nxy   map[TokenPair]int64 // document co-occurrence per token pair
	vocab map[string]struct{} // nil means every token is tracked
}

// TokenPair represents an unordered pair of tokens stored as T1 < T2
type TokenPair struct {
	T1, T2 string
}

// NewCounter creates a counter that tracks every token.
func NewCounter() *Counter {
	return &Counter{
		Nx:  make(map[string]int64),
		Nxy: make(map[TokenPair]int64),
	}
}

// NewVocabCounter creates a counter restricted to the given tokens.
// Pair counting is quadratic in the tracked tokens per document, so
// coherence callers pass only the topics' top words.
func NewVocabCounter(tokens []string) *Counter {
	c := NewCounter()
	c.vocab = make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		c.vocab[t] = struct{}{}
	}
	return c
}

// AddDocument updates counts for one document. Duplicate tokens are
// counted once.
func (c *Counter) AddDocument(tokens []string) {
	c.N++

	seen := make(map[string]struct{}, len(tokens))
	unique := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if c.vocab != nil {
			if _, ok := c.vocab[t]; !ok {
				continue
			}
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
		c.Nx[t]++
	}

	sort.Strings(unique)
	for i := 0; i < len(unique); i++ {
		for j := i + 1; j < len(unique); j++ {
			c.Nxy[TokenPair{T1: unique[i], T2: unique[j]}]++
		}
	}
}

// GetPairCount returns the co-occurrence count for a token pair
func (c *Counter) GetPairCount(t1, t2 string) int64 {
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	return c.Nxy[TokenPair{T1: t1, T2: t2}]
}

// GetTokenCount returns the document frequency for a token
func (c *Counter) GetTokenCount(t string) int64 {
	return c.Nx[t]
}

// TotalDocs returns the total number of documents processed
func (c *Counter) TotalDocs() int64 {
	return c.N
}

// UniqueTokens returns the number of unique tokens
func (c *Counter) UniqueTokens() int {
	return len(c.Nx)
}

// UniquePairs returns the number of unique token pairs
func (c *Counter) UniquePairs() int {
	return len(c.Nxy)
}
