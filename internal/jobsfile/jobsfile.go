package jobsfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/cognicore/jobtopic/pkg/jobtopic/ingest"
)

// LoadFromJSONL loads job postings from a JSONL file, one object per line
// with title, url and description keys. Malformed or incomplete lines are
// logged and skipped.
func LoadFromJSONL(path string, logger *log.Logger) ([]ingest.Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	jobs, err := ReadJSONL(f, path, logger)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no valid jobs found in %s", path)
	}
	return jobs, nil
}

// ReadJSONL reads job postings from r. name only labels log lines.
func ReadJSONL(r io.Reader, name string, logger *log.Logger) ([]ingest.Job, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var jobs []ingest.Job
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var job ingest.Job
		if err := json.Unmarshal([]byte(text), &job); err != nil {
			logger.Printf("Warning: skipping malformed JSON at line %d in %s: %v", line, name, err)
			continue
		}
		if err := job.Validate(); err != nil {
			logger.Printf("Warning: skipping line %d in %s: %v", line, name, err)
			continue
		}
		jobs = append(jobs, job)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return jobs, nil
}

// WriteCorpus writes a cleaned corpus as a JSON array of token arrays.
func WriteCorpus(path string, corpus [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	if err := enc.Encode(corpus); err != nil {
		f.Close()
		return fmt.Errorf("encode corpus: %w", err)
	}
	return f.Close()
}

// ReadCorpus reads a corpus written by WriteCorpus.
func ReadCorpus(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var corpus [][]string
	if err := json.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("decode corpus %s: %w", path, err)
	}
	return corpus, nil
}
