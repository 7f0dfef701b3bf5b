package phrases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
)

// Repository persists trained combiners by prefix. Saving under an
// existing prefix replaces both generations.
type Repository interface {
	SaveCombiner(ctx context.Context, c *Combiner) error
	LoadCombiner(ctx context.Context, prefix string) (*Combiner, error)
}

// Versioner is implemented by repositories that can cheaply report which
// stored training run a prefix currently holds. The version changes
// whenever SaveCombiner replaces the models, from any process.
type Versioner interface {
	CombinerVersion(ctx context.Context, prefix string) (string, error)
}

// FileRepository stores each generation as a JSON file in one directory:
//
//	<dir>/<prefix>-phrase_model_1.json
//	<dir>/<prefix>-phrase_model_2.json
type FileRepository struct {
	dir string
}

var _ Versioner = (*FileRepository)(nil)

// NewFileRepository creates the model directory if needed.
func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	return &FileRepository{dir: dir}, nil
}

// ModelPath returns the artifact path of one generation (1 or 2).
func (r *FileRepository) ModelPath(prefix string, generation int) string {
	return filepath.Join(r.dir, fmt.Sprintf("%s-phrase_model_%d.json", prefix, generation))
}

// SaveCombiner writes both generations. Each file is written to a temp
// file and renamed into place.
func (r *FileRepository) SaveCombiner(ctx context.Context, c *Combiner) error {
	if err := ValidatePrefix(c.Prefix); err != nil {
		return err
	}
	for gen, m := range []*Model{c.First, c.Second} {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.writeModel(r.ModelPath(c.Prefix, gen+1), m); err != nil {
			return fmt.Errorf("save %s generation %d: %w", c.Prefix, gen+1, err)
		}
	}
	return nil
}

func (r *FileRepository) writeModel(path string, m *Model) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(r.dir, ".phrase-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadCombiner reads both generations for prefix. A missing file yields a
// *internalerr.ModelNotFoundError and an undecodable one a
// *internalerr.ModelMalformedError.
func (r *FileRepository) LoadCombiner(ctx context.Context, prefix string) (*Combiner, error) {
	if err := ValidatePrefix(prefix); err != nil {
		return nil, err
	}
	c := &Combiner{Prefix: prefix}
	for gen, dst := range []**Model{&c.First, &c.Second} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(r.ModelPath(prefix, gen+1))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &internalerr.ModelNotFoundError{Kind: "phrase", Prefix: prefix, Err: err}
		}
		if err != nil {
			return nil, fmt.Errorf("read %s generation %d: %w", prefix, gen+1, err)
		}
		m, err := DecodeModel(data)
		if err != nil {
			return nil, &internalerr.ModelMalformedError{Kind: "phrase", Prefix: prefix, Err: err}
		}
		*dst = m
	}
	return c, nil
}

// CombinerVersion derives a version from the size and modification time
// of both generation files.
func (r *FileRepository) CombinerVersion(ctx context.Context, prefix string) (string, error) {
	if err := ValidatePrefix(prefix); err != nil {
		return "", err
	}
	var parts [2]string
	for gen := range parts {
		fi, err := os.Stat(r.ModelPath(prefix, gen+1))
		if errors.Is(err, fs.ErrNotExist) {
			return "", &internalerr.ModelNotFoundError{Kind: "phrase", Prefix: prefix, Err: err}
		}
		if err != nil {
			return "", err
		}
		parts[gen] = fmt.Sprintf("%d.%d", fi.ModTime().UnixNano(), fi.Size())
	}
	return parts[0] + "/" + parts[1], nil
}

// DecodeModel parses a model encoded with json.Marshal.
func DecodeModel(data []byte) (*Model, error) {
	m := &Model{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}
