package bins

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lox/drawpoker/internal/fileutil"
)

// ErrMalformedStats is returned when a stats dump cannot be applied as a whole.
var ErrMalformedStats = errors.New("malformed stats")

// Stat tracks the observed performance of one strategy.
type Stat struct {
	Hits       int64
	Weighted   float64 // mean of post/pre strength ratios
	Unweighted float64 // fraction of samples where the draw did not hurt
}

// NewStat returns a fresh counter. Untried strategies start at a neutral 1.0.
func NewStat() Stat {
	return Stat{Weighted: 1, Unweighted: 1}
}

// Record folds one sample into both running means.
func (s *Stat) Record(sample float64) {
	hit := 0.0
	if sample >= 1 {
		hit = 1
	}
	n := float64(s.Hits)
	s.Weighted = (s.Weighted*n + sample) / (n + 1)
	s.Unweighted = (s.Unweighted*n + hit) / (n + 1)
	s.Hits++
}

// Merge combines two independent running means weighted by their counts.
func (s *Stat) Merge(o Stat) {
	if o.Hits == 0 {
		return
	}
	if s.Hits == 0 {
		*s = o
		return
	}
	n1, n2 := float64(s.Hits), float64(o.Hits)
	s.Weighted = (s.Weighted*n1 + o.Weighted*n2) / (n1 + n2)
	s.Unweighted = (s.Unweighted*n1 + o.Unweighted*n2) / (n1 + n2)
	s.Hits += o.Hits
}

// Score is the sampling weight of the strategy.
func (s Stat) Score() float64 {
	return s.Unweighted * s.Weighted
}

// Stats holds per bin, per strategy counters for a bin set. It is not safe for
// concurrent mutation; parallel simulations each own one and merge afterwards.
type Stats struct {
	set        *Set
	stats      [][]Stat
	global     int64 // iterations recorded in previously saved dumps
	iterations int64 // iterations simulated since the last save
}

// NewStats returns fresh counters shaped like the set.
func NewStats(set *Set) *Stats {
	s := &Stats{set: set, stats: make([][]Stat, set.Len())}
	for i, b := range set.bins {
		row := make([]Stat, len(b.Strategies))
		for j := range row {
			row[j] = NewStat()
		}
		s.stats[i] = row
	}
	return s
}

// Set returns the bin set the counters belong to.
func (s *Stats) Set() *Set {
	return s.set
}

// Record adds a sample for strategy j of bin i.
func (s *Stats) Record(bin, strategy int, sample float64) {
	s.stats[bin][strategy].Record(sample)
}

// Stat returns the counter for strategy j of bin i.
func (s *Stats) Stat(bin, strategy int) Stat {
	return s.stats[bin][strategy]
}

// Bin returns a copy of the counters for bin i.
func (s *Stats) Bin(bin int) []Stat {
	return append([]Stat(nil), s.stats[bin]...)
}

// AddIterations counts simulated deals towards the next save.
func (s *Stats) AddIterations(n int64) {
	s.iterations += n
}

// Iterations returns the global count including unsaved iterations.
func (s *Stats) Iterations() int64 {
	return s.global + s.iterations
}

// Merge folds another set of counters for the same bins into s.
func (s *Stats) Merge(o *Stats) error {
	if o.set != s.set && !sameShape(s, o) {
		return errors.New("merge: stats belong to different bin sets")
	}
	for i := range s.stats {
		for j := range s.stats[i] {
			s.stats[i][j].Merge(o.stats[i][j])
		}
	}
	s.global += o.global
	s.iterations += o.iterations
	return nil
}

func sameShape(a, b *Stats) bool {
	if len(a.stats) != len(b.stats) {
		return false
	}
	for i := range a.stats {
		if len(a.stats[i]) != len(b.stats[i]) || a.set.bins[i].Name != b.set.bins[i].Name {
			return false
		}
	}
	return true
}

// Write renders the dump format: the global iteration count, then each bin
// name followed by "index,hits,weighted,unweighted" lines.
func (s *Stats) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", s.Iterations())
	for i, b := range s.set.bins {
		fmt.Fprintf(bw, "%s\n", b.Name)
		for j, st := range s.stats[i] {
			fmt.Fprintf(bw, "%d,%d,%s,%s\n", j, st.Hits, formatFloat(st.Weighted), formatFloat(st.Unweighted))
		}
	}
	return bw.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Save adds this run's iterations to the global count and writes the dump atomically.
func (s *Stats) Save(path string) error {
	if err := fileutil.WriteAtomic(path, 0o644, s.Write); err != nil {
		return err
	}
	s.global += s.iterations
	s.iterations = 0
	return nil
}

// Read parses a dump and merges it into s. Nothing is applied unless the
// whole dump is well formed. Reading stops at the first blank line or EOF.
func (s *Stats) Read(r io.Reader) error {
	loaded := NewStats(s.set)
	sc := bufio.NewScanner(r)
	line := 0

	malformed := func(format string, args ...any) error {
		return fmt.Errorf("%w: line %d: %s", ErrMalformedStats, line, fmt.Sprintf(format, args...))
	}

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return err
		}
		return fmt.Errorf("%w: empty dump", ErrMalformedStats)
	}
	line++
	global, err := strconv.ParseInt(strings.TrimSpace(sc.Text()), 10, 64)
	if err != nil || global < 0 {
		return malformed("iteration count %q", sc.Text())
	}
	loaded.global = global

	current := -1
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			break
		}
		fields := strings.Split(text, ",")
		switch len(fields) {
		case 1:
			idx, ok := s.set.Index(text)
			if !ok {
				return malformed("unknown bin %q", text)
			}
			current = idx
		case 4:
			if current < 0 {
				return malformed("strategy line before any bin name")
			}
			j, err := strconv.Atoi(fields[0])
			if err != nil || j < 0 || j >= len(loaded.stats[current]) {
				return malformed("strategy index %q out of range for bin %q", fields[0], s.set.bins[current].Name)
			}
			hits, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil || hits < 0 {
				return malformed("hit count %q", fields[1])
			}
			weighted, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return malformed("weighted performance %q", fields[2])
			}
			unweighted, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return malformed("unweighted performance %q", fields[3])
			}
			loaded.stats[current][j] = Stat{Hits: hits, Weighted: weighted, Unweighted: unweighted}
		default:
			return malformed("expected a bin name or 4 fields, got %d", len(fields))
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return s.Merge(loaded)
}

// Load merges a dump file into s. A missing file leaves s unchanged.
func (s *Stats) Load(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open stats: %w", err)
	}
	defer f.Close()
	if err := s.Read(f); err != nil {
		return fmt.Errorf("load stats %s: %w", path, err)
	}
	return nil
}
