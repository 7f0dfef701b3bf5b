package ingest

import (
	"context"
	"fmt"
	"reflect"
	"testing"
)

func newTestPipeline() *Pipeline {
	return NewPipeline(
		NewTokenizer(),
		NewTaggerWith(mapTagger{
			"they":    "PRP",
			"analyze": "VBP",
			"build":   "VBP",
			".":       ".",
		}),
		NewLemmatizer(testDict, nil),
		NewCleaner(nil),
	)
}

func TestPipelineProcess(t *testing.T) {
	p := newTestPipeline()

	got := p.Process(`Data Scientists analyze data.\nThey build models.`)
	want := []string{"data", "scientist", "analyze", "data", "build", "model"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Process() = %v, want %v", got, want)
	}
}

func TestPipelineEmptyDocument(t *testing.T) {
	p := newTestPipeline()

	got := p.Process("")
	if len(got) != 0 {
		t.Errorf("Process(\"\") = %v, want empty", got)
	}
}

func TestPipelineTraceKeepsStages(t *testing.T) {
	p := newTestPipeline()

	st := p.Trace("They build models.")

	if len(st.Sentences) != 1 {
		t.Fatalf("Expected 1 sentence, got %d", len(st.Sentences))
	}
	if len(st.Tagged) != 1 || len(st.Tagged[0]) != len(st.Sentences[0]) {
		t.Fatalf("tagging changed sentence shape: %v", st.Tagged)
	}
	if !reflect.DeepEqual(st.Lemmas, []string{"they", "build", "model", "."}) {
		t.Errorf("Lemmas = %v", st.Lemmas)
	}
	if !reflect.DeepEqual(st.Tokens, []string{"build", "model"}) {
		t.Errorf("Tokens = %v", st.Tokens)
	}
}

func TestPipelineAnalyzer(t *testing.T) {
	p := newTestPipeline()
	analyze := p.Analyzer()

	doc := "They build models."
	if !reflect.DeepEqual(analyze(doc), p.Process(doc)) {
		t.Error("Analyzer should match Process")
	}
}

func TestProcessAllPreservesOrder(t *testing.T) {
	p := newTestPipeline()

	docs := make([]string, 40)
	for i := range docs {
		docs[i] = fmt.Sprintf("They build models%s.", string(rune('a'+i%26)))
	}

	sequential, err := p.ProcessAll(context.Background(), docs, 1)
	if err != nil {
		t.Fatalf("ProcessAll sequential: %v", err)
	}

	for _, workers := range []int{2, 4, 8} {
		parallel, err := p.ProcessAll(context.Background(), docs, workers)
		if err != nil {
			t.Fatalf("ProcessAll with %d workers: %v", workers, err)
		}
		if !reflect.DeepEqual(sequential, parallel) {
			t.Errorf("ProcessAll with %d workers differs from sequential run", workers)
		}
	}

	for i, doc := range docs {
		if !reflect.DeepEqual(sequential[i], p.Process(doc)) {
			t.Errorf("result %d does not belong to document %d", i, i)
		}
	}
}

func TestProcessAllCancelled(t *testing.T) {
	p := newTestPipeline()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs := []string{"They build models.", "They build pipelines."}
	for _, workers := range []int{1, 4} {
		_, err := p.ProcessAll(ctx, docs, workers)
		if err != context.Canceled {
			t.Errorf("workers=%d: expected context.Canceled, got %v", workers, err)
		}
	}
}
