package bins

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lox/drawpoker/internal/fileutil"
	"github.com/lox/drawpoker/poker"
)

// handType reads "one_pair", "HandType.one_pair" or {"__enum__": "HandType.one_pair"}
// and always writes the tagged object form.
type handType poker.Category

type enumTag struct {
	Enum string `json:"__enum__"`
}

func (h handType) MarshalJSON() ([]byte, error) {
	return json.Marshal(enumTag{Enum: poker.Category(h).EnumTag()})
}

func (h *handType) UnmarshalJSON(data []byte) error {
	var tag string
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		var e enumTag
		if err := json.Unmarshal(data, &e); err != nil {
			return err
		}
		tag = e.Enum
	} else if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	c, err := poker.ParseCategory(tag)
	if err != nil {
		return err
	}
	*h = handType(c)
	return nil
}

// multiplicity accepts integers and the booleans older files used for "no draw".
type multiplicity int

func (m *multiplicity) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			*m = 1
		} else {
			*m = 0
		}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("is_potential_straight: %w", err)
	}
	*m = multiplicity(n)
	return nil
}

type binRecord struct {
	Name                string       `json:"name"`
	HandType            handType     `json:"hand_type"`
	RankFrom            int          `json:"rank_from"`
	RankTo              int          `json:"rank_to"`
	IsPotentialStraight multiplicity `json:"is_potential_straight"`
	IsPotentialFlush    bool         `json:"is_potential_flush"`
	Strategies          [][]int      `json:"strategies"`
	// Written by older tooling under a mangled attribute name.
	LegacyStrategies [][]int `json:"_SBin__strategies,omitempty"`
}

func (r binRecord) bin() Bin {
	raw := r.Strategies
	if raw == nil {
		raw = r.LegacyStrategies
	}
	strategies := make([]Strategy, len(raw))
	for i, st := range raw {
		strategies[i] = append(Strategy{}, st...)
	}
	return Bin{
		Name:              r.Name,
		Category:          poker.Category(r.HandType),
		RankFrom:          r.RankFrom,
		RankTo:            r.RankTo,
		PotentialFlush:    r.IsPotentialFlush,
		PotentialStraight: int(r.IsPotentialStraight),
		Strategies:        strategies,
	}
}

func recordOf(b Bin) binRecord {
	strategies := make([][]int, len(b.Strategies))
	for i, st := range b.Strategies {
		strategies[i] = append([]int{}, st...)
	}
	return binRecord{
		Name:                b.Name,
		HandType:            handType(b.Category),
		RankFrom:            b.RankFrom,
		RankTo:              b.RankTo,
		IsPotentialStraight: multiplicity(b.PotentialStraight),
		IsPotentialFlush:    b.PotentialFlush,
		Strategies:          strategies,
	}
}

// LoadSet reads a bins definition file: a JSON array of bin records.
func LoadSet(r io.Reader) (*Set, error) {
	var records []binRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode bins: %w", err)
	}
	bins := make([]Bin, len(records))
	for i, rec := range records {
		bins[i] = rec.bin()
	}
	return NewSet(bins)
}

// LoadSetFile reads a bins definition file from disk.
func LoadSetFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bins: %w", err)
	}
	defer f.Close()
	return LoadSet(f)
}

// Save writes the set as an indented JSON array.
func (s *Set) Save(w io.Writer) error {
	records := make([]binRecord, len(s.bins))
	for i, b := range s.bins {
		records[i] = recordOf(b)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// SaveFile writes the set atomically.
func (s *Set) SaveFile(path string) error {
	return fileutil.WriteAtomic(path, 0o644, s.Save)
}
