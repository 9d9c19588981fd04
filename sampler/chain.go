package sampler

import (
	"bufio"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/CraigKelly/paraminsight/model"
)

// Record is one chain position. Accepted is false when the step's proposal
// was rejected and the previous position was repeated.
type Record struct {
	A        float64
	B        float64
	LogL     float64
	Accepted bool
}

// Params returns the position of the record
func (r Record) Params() model.Params {
	return model.Params{A: r.A, B: r.B}
}

// Chain is the ordered output of a sampler run: Records[0] is the initial
// state and there is one more record for every step. BurnIn only marks how
// many leading steps downstream consumers should skip; nothing is removed.
// A chain is not modified once the sampler returns it.
type Chain struct {
	Config  Config
	Records []Record
	BurnIn  int
	Stats   Stats
}

func newChain(cfg Config) *Chain {
	return &Chain{
		Config:  cfg,
		Records: make([]Record, 0, cfg.Steps+1),
		BurnIn:  cfg.BurnIn,
	}
}

func (c *Chain) append(r Record) {
	c.Records = append(c.Records, r)
}

// Len is the number of records, including the initial state
func (c *Chain) Len() int {
	return len(c.Records)
}

// At returns the i-th record
func (c *Chain) At(i int) Record {
	return c.Records[i]
}

// PostBurnIn returns the records after the burn-in prefix. The slice shares
// storage with the chain and must not be modified.
func (c *Chain) PostBurnIn() []Record {
	start := c.BurnIn
	if start > len(c.Records) {
		start = len(c.Records)
	}
	if start < 0 {
		start = 0
	}
	return c.Records[start:]
}

// Columns splits records into separate a, b and logL slices
func Columns(records []Record) (a []float64, b []float64, logL []float64) {
	a = make([]float64, len(records))
	b = make([]float64, len(records))
	logL = make([]float64, len(records))
	for i, r := range records {
		a[i], b[i], logL[i] = r.A, r.B, r.LogL
	}
	return
}

// MergeChains returns the post burn-in records of all chains, in chain order,
// suitable for a pooled posterior summary.
func MergeChains(chains []*Chain) ([]Record, error) {
	if len(chains) < 1 {
		return nil, errors.Errorf("Can not merge 0 chains")
	}

	total := 0
	for i, ch := range chains {
		if ch == nil {
			return nil, errors.Errorf("Chain %d is missing", i)
		}
		total += len(ch.PostBurnIn())
	}

	merged := make([]Record, 0, total)
	for _, ch := range chains {
		merged = append(merged, ch.PostBurnIn()...)
	}

	return merged, nil
}

// WriteChain writes a tab separated trace: one header row, then one row per
// record with its step index.
func WriteChain(w io.Writer, c *Chain) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("step\ta\tb\tlogL\taccepted\n")

	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for i, r := range c.Records {
		bw.WriteString(strconv.Itoa(i))
		bw.WriteString("\t" + f(r.A) + "\t" + f(r.B) + "\t" + f(r.LogL) + "\t")
		bw.WriteString(strconv.FormatBool(r.Accepted))
		bw.WriteString("\n")
	}

	return errors.Wrap(bw.Flush(), "Could not write chain")
}
