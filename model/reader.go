package model

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ObservationReader implementors instantiate an observation set from a byte
// stream.
type ObservationReader interface {
	ReadObservations(data []byte) (*ObservationSet, error)
}

// FieldReader is just a simple reader for basic file formats.
type FieldReader struct {
	Pos    int
	Fields []string
}

// NewFieldReader constructs a new field reader around the given data
func NewFieldReader(data string) *FieldReader {
	return &FieldReader{0, strings.Fields(data)}
}

// Read returns the next space-delimited field/token
func (fr *FieldReader) Read() (string, error) {
	if fr.Pos >= len(fr.Fields) {
		return "", io.EOF
	}
	p := fr.Pos
	fr.Pos++
	return fr.Fields[p], nil
}

// Remaining is the number of fields not yet read
func (fr *FieldReader) Remaining() int {
	return len(fr.Fields) - fr.Pos
}

// ReadFloat reads the next token as a float
func (fr *FieldReader) ReadFloat() (float64, error) {
	s, err := fr.Read()
	if err != nil {
		return 0, err
	}

	return strconv.ParseFloat(s, 64)
}

// TextReader reads whitespace separated "x y dy" rows. An optional header
// row (any row whose first field is not a number) and lines starting with #
// are skipped.
type TextReader struct{}

// ReadObservations implements ObservationReader
func (r TextReader) ReadObservations(data []byte) (*ObservationSet, error) {
	lines := strings.Split(string(data), "\n")
	kept := make([]string, 0, len(lines))
	for i, ln := range lines {
		ln = strings.TrimSpace(ln)
		if len(ln) < 1 || ln[0] == '#' {
			continue
		}
		if len(kept) == 0 {
			first := strings.Fields(ln)[0]
			if _, err := strconv.ParseFloat(first, 64); err != nil {
				continue // header
			}
		}
		if n := len(strings.Fields(ln)); n != 3 {
			return nil, errors.Errorf("Line %d has %d fields, expected 3 (x y dy)", i+1, n)
		}
		kept = append(kept, ln)
	}

	fr := NewFieldReader(strings.Join(kept, "\n"))
	count := fr.Remaining() / 3
	x := make([]float64, count)
	y := make([]float64, count)
	dy := make([]float64, count)

	var err error
	for i := 0; i < count; i++ {
		if x[i], err = fr.ReadFloat(); err != nil {
			return nil, errors.Wrapf(err, "Could not read x for row %d", i)
		}
		if y[i], err = fr.ReadFloat(); err != nil {
			return nil, errors.Wrapf(err, "Could not read y for row %d", i)
		}
		if dy[i], err = fr.ReadFloat(); err != nil {
			return nil, errors.Wrapf(err, "Could not read dy for row %d", i)
		}
	}

	return NewObservationSet(x, y, dy)
}

// NewObservationSetFromFile reads and validates observations from filename
func NewObservationSetFromFile(r ObservationReader, filename string) (*ObservationSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ observations from %s", filename)
	}

	obs, err := r.ReadObservations(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not PARSE observations from %s", filename)
	}

	return obs, nil
}

// WriteObservations writes obs in the tab separated format TextReader reads.
// Values are written with full precision so they read back exactly.
func WriteObservations(w io.Writer, obs *ObservationSet) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("x\t y\t dy\n")

	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for i := 0; i < obs.Len(); i++ {
		x, y, dy := obs.Point(i)
		bw.WriteString(f(x) + "\t" + f(y) + "\t" + f(dy) + "\n")
	}

	return errors.Wrap(bw.Flush(), "Could not write observations")
}
