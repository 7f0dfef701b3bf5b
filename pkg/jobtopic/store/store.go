package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
	"github.com/cognicore/jobtopic/pkg/jobtopic/phrases"
)

// Store persists job postings and the phrase models trained on them.
type Store interface {
	Close() error

	// Jobs
	InsertJob(ctx context.Context, j Job) (int64, error)
	GetJob(ctx context.Context, id int64) (Job, error)
	ListJobs(ctx context.Context, offset, limit int) ([]Job, error)
	CountJobs(ctx context.Context) (int64, error)
	Texts(ctx context.Context, field Field) ([]string, error)

	// Phrase models
	phrases.Repository
}

// Job is a stored job posting. Every text field is required.
type Job struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Validate checks the required fields.
func (j Job) Validate() error {
	switch {
	case strings.TrimSpace(j.Title) == "":
		return fmt.Errorf("%w: job title is required", internalerr.ErrInvalidInput)
	case strings.TrimSpace(j.URL) == "":
		return fmt.Errorf("%w: job URL is required", internalerr.ErrInvalidInput)
	case strings.TrimSpace(j.Description) == "":
		return fmt.Errorf("%w: job description is required", internalerr.ErrInvalidInput)
	}
	return nil
}

// Field selects which job text a corpus is built from.
type Field string

const (
	FieldDescription Field = "description"
	FieldTitle       Field = "title"
)

// ParseField validates a field name.
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldDescription, FieldTitle:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown job field %q", internalerr.ErrInvalidInput, s)
}

// Text returns the job's value for field.
func (j Job) Text(field Field) string {
	if field == FieldTitle {
		return j.Title
	}
	return j.Description
}

// DefaultListLimit caps ListJobs when no limit is given.
const DefaultListLimit = 50
