package ingest

import (
	"context"
	"sync"
)

// Pipeline orchestrates the per-document flow:
// text → tokenization → POS tagging → lemmatization → cleaning
//
// Phrase merging needs a corpus-level model and lives in package phrases.
type Pipeline struct {
	tokenizer  *Tokenizer
	tagger     *Tagger
	lemmatizer *Lemmatizer
	cleaner    *Cleaner
}

// NewPipeline creates a pipeline with the given components
func NewPipeline(tokenizer *Tokenizer, tagger *Tagger, lemmatizer *Lemmatizer, cleaner *Cleaner) *Pipeline {
	return &Pipeline{
		tokenizer:  tokenizer,
		tagger:     tagger,
		lemmatizer: lemmatizer,
		cleaner:    cleaner,
	}
}

// Stages exposes every intermediate artifact of one document, for
// debugging and for the HTTP process endpoint.
type Stages struct {
	Sentences [][]string
	Tagged    [][]TaggedToken
	Lemmas    []string
	Tokens    []string
}

// Trace runs a document through every stage and keeps the intermediates.
func (p *Pipeline) Trace(doc string) Stages {
	var st Stages
	st.Sentences = p.tokenizer.Tokenize(doc)
	st.Tagged = p.tagger.TagDoc(st.Sentences)
	st.Lemmas = p.lemmatizer.LemmatizeDoc(st.Tagged)
	st.Tokens = p.cleaner.Clean(st.Lemmas)
	return st
}

// Process runs a document through the pipeline and returns its cleaned
// token sequence.
func (p *Pipeline) Process(doc string) []string {
	return p.Trace(doc).Tokens
}

// Analyzer returns Process as a plain function, for use as the tokenizer
// of a bag-of-words vectorizer.
func (p *Pipeline) Analyzer() func(string) []string {
	return p.Process
}

// ProcessAll processes a batch. The i-th result belongs to the i-th
// document regardless of worker count. Cancellation is checked between
// documents.
func (p *Pipeline) ProcessAll(ctx context.Context, docs []string, workers int) ([][]string, error) {
	out := make([][]string, len(docs))
	if workers <= 1 {
		for i, doc := range docs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = p.Process(doc)
		}
		return out, nil
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = p.Process(docs[i])
			}
		}()
	}

	var err error
feed:
	for i := range docs {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		return nil, err
	}
	return out, nil
}
