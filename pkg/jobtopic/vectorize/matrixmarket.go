package vectorize

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/cognicore/jobtopic/pkg/jobtopic/internalerr"
)

const mmHeader = "%%MatrixMarket matrix coordinate integer general"

// maxDim bounds the row and column counts a size line may declare.
const maxDim = 1 << 24

// WriteMatrixMarket writes m in MatrixMarket coordinate format with
// 1-based indices.
func (m *Matrix) WriteMatrixMarket(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, mmHeader)
	fmt.Fprintf(bw, "%d %d %d\n", m.NumRows(), m.Cols, m.NonZero())
	for i, row := range m.Rows {
		for _, e := range row {
			fmt.Fprintf(bw, "%d %d %d\n", i+1, e.Col+1, e.Count)
		}
	}
	return bw.Flush()
}

// ReadMatrixMarket reads a coordinate integer matrix.
func ReadMatrixMarket(r io.Reader) (*Matrix, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: empty matrix file", internalerr.ErrInvalidInput)
	}
	header := strings.Fields(strings.ToLower(sc.Text()))
	if len(header) < 5 || header[0] != "%%matrixmarket" || header[1] != "matrix" || header[2] != "coordinate" {
		return nil, fmt.Errorf("%w: not a coordinate MatrixMarket file", internalerr.ErrInvalidInput)
	}
	if header[3] != "integer" || header[4] != "general" {
		return nil, fmt.Errorf("%w: unsupported matrix type %s %s", internalerr.ErrInvalidInput, header[3], header[4])
	}

	var m *Matrix
	rows, nnz, read := 0, 0, 0
	line := 1
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "%") {
			continue
		}
		nums, err := parseInts(text)
		if err != nil || len(nums) != 3 {
			return nil, fmt.Errorf("%w: line %d: malformed entry %q", internalerr.ErrInvalidInput, line, text)
		}
		if m == nil {
			if nums[0] < 0 || nums[1] < 0 || nums[2] < 0 {
				return nil, fmt.Errorf("%w: line %d: negative size", internalerr.ErrInvalidInput, line)
			}
			if nums[0] > maxDim || nums[1] > maxDim {
				return nil, fmt.Errorf("%w: line %d: size %dx%d exceeds %d", internalerr.ErrInvalidInput, line, nums[0], nums[1], maxDim)
			}
			m = &Matrix{Cols: nums[1]}
			rows, nnz = nums[0], nums[2]
			continue
		}
		i, j := nums[0]-1, nums[1]-1
		if i < 0 || i >= rows || j < 0 || j >= m.Cols {
			return nil, fmt.Errorf("%w: line %d: index out of range", internalerr.ErrInvalidInput, line)
		}
		if read == nnz {
			return nil, fmt.Errorf("%w: line %d: more than %d entries", internalerr.ErrInvalidInput, line, nnz)
		}
		for len(m.Rows) <= i {
			m.Rows = append(m.Rows, nil)
		}
		m.Rows[i] = append(m.Rows[i], Entry{Col: j, Count: nums[2]})
		read++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: missing size line", internalerr.ErrInvalidInput)
	}
	if read != nnz {
		return nil, fmt.Errorf("%w: expected %d entries, found %d", internalerr.ErrInvalidInput, nnz, read)
	}
	// Trailing rows without entries are documents with no terms.
	for len(m.Rows) < rows {
		m.Rows = append(m.Rows, nil)
	}

	for _, row := range m.Rows {
		sort.Slice(row, func(a, b int) bool { return row[a].Col < row[b].Col })
	}
	return m, nil
}

func parseInts(s string) ([]int, error) {
	fields := strings.Fields(s)
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
