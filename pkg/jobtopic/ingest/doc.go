package ingest

import (
	"fmt"
	"strings"

	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
)

// Job is a scraped job posting before it is stored.
type Job struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Validate checks that every required field is present
func (j *Job) Validate() error {
	if strings.TrimSpace(j.Title) == "" {
		return fmt.Errorf("%w: job title is required", internalerr.ErrInvalidInput)
	}

	if strings.TrimSpace(j.URL) == "" {
		return fmt.Errorf("%w: job URL is required", internalerr.ErrInvalidInput)
	}

	if strings.TrimSpace(j.Description) == "" {
		return fmt.Errorf("%w: job description is required", internalerr.ErrInvalidInput)
	}

	return nil
}
