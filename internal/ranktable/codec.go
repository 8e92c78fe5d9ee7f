package ranktable

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lox/drawpoker/internal/fileutil"
	"github.com/lox/drawpoker/poker"
)

// recordFields is the number of comma separated fields in a persisted record
// once parentheses are stripped.
const recordFields = 13

// FormatRecord renders a value in the persisted record form:
//
//	HandType.<tag>,<c0>,<c1>,<c2>,<c3>,<c4>,<s0>,<strength>,(d, m, id),(d, id)
//
// Absent draws are written as -1 throughout.
func FormatRecord(v HandValue) string {
	var b strings.Builder
	b.WriteString(v.Category.EnumTag())
	for _, c := range v.Cards {
		b.WriteByte(',')
		b.WriteString(c.String())
	}
	mult := v.StraightDraw.Multiplicity
	if !v.StraightDraw.Ok() {
		mult = -1
	}
	fmt.Fprintf(&b, ",%d,%d,(%d, %d, %d),(%d, %d)",
		v.S0, v.Strength,
		v.StraightDraw.Discard, mult, v.StraightDraw.Completion,
		v.FlushDraw.Discard, v.FlushDraw.Completion)
	return b.String()
}

// ParseRecord is the inverse of FormatRecord.
func ParseRecord(id poker.HandID, s string) (HandValue, error) {
	s = strings.NewReplacer("(", "", ")", "").Replace(s)
	fields := strings.Split(s, ",")
	if len(fields) != recordFields {
		return HandValue{}, fmt.Errorf("record for %d has %d fields, want %d", id, len(fields), recordFields)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	cat, err := poker.ParseCategory(fields[0])
	if err != nil {
		return HandValue{}, fmt.Errorf("record for %d: %w", id, err)
	}
	v := HandValue{ID: id, Category: cat}
	for i := range v.Cards {
		c, err := poker.ParseCard(fields[1+i])
		if err != nil {
			return HandValue{}, fmt.Errorf("record for %d: %w", id, err)
		}
		v.Cards[i] = c
	}

	ints := make([]int64, recordFields-6)
	for i := range ints {
		n, err := strconv.ParseInt(fields[6+i], 10, 64)
		if err != nil {
			return HandValue{}, fmt.Errorf("record for %d field %d: %w", id, 6+i, err)
		}
		ints[i] = n
	}
	v.S0 = ints[0]
	v.Strength = int(ints[1])
	v.StraightDraw = poker.StraightDraw{
		Discard:      int(ints[2]),
		Multiplicity: int(max(ints[3], 0)),
		Completion:   poker.HandID(ints[4]),
	}
	v.FlushDraw = poker.FlushDraw{
		Discard:    int(ints[5]),
		Completion: poker.HandID(ints[6]),
	}
	if !v.StraightDraw.Ok() {
		v.StraightDraw.Multiplicity = 0
	}
	return v, nil
}

// Save streams the table as a JSON object keyed by hand id.
func (t *Table) Save(w io.Writer) error {
	if t.Len() != NumHands {
		return fmt.Errorf("save: %w: table not built", ErrNotFound)
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("{"); err != nil {
		return err
	}
	first := true
	var werr error
	t.Each(func(v HandValue) bool {
		if !first {
			if _, werr = bw.WriteString(",\n"); werr != nil {
				return false
			}
		}
		first = false
		record, _ := json.Marshal(FormatRecord(v))
		_, werr = fmt.Fprintf(bw, "%q: %s", strconv.FormatInt(int64(v.ID), 10), record)
		return werr == nil
	})
	if werr != nil {
		return werr
	}
	if _, err := bw.WriteString("}\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// SaveFile writes the table atomically.
func (t *Table) SaveFile(path string) error {
	return fileutil.WriteAtomic(path, 0o644, t.Save)
}

// Load reads a persisted table. Both the keyed object form and an array of
// [id, record] pairs are accepted. The table must contain every hand exactly once.
func Load(r io.Reader) (*Table, error) {
	dec := json.NewDecoder(bufio.NewReaderSize(r, 1<<20))
	dec.UseNumber()

	t := &Table{entries: make([]entry, NumHands)}
	count := 0
	add := func(key string, record string) error {
		n, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fmt.Errorf("hand id %q: %w", key, err)
		}
		id := poker.HandID(n)
		h, err := poker.HandFromID(id)
		if err != nil {
			return err
		}
		v, err := ParseRecord(id, record)
		if err != nil {
			return err
		}
		if err := checkValue(h, v); err != nil {
			return err
		}
		slot := Slot(h)
		if t.entries[slot].strength != 0 {
			return fmt.Errorf("hand id %d appears twice", id)
		}
		t.entries[slot] = v.compact()
		count++
		return nil
	}

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read rank table: %w", err)
	}
	switch tok {
	case json.Delim('{'):
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("read rank table: %w", err)
			}
			key, _ := keyTok.(string)
			var record string
			if err := dec.Decode(&record); err != nil {
				return nil, fmt.Errorf("read record %s: %w", key, err)
			}
			if err := add(key, record); err != nil {
				return nil, err
			}
		}
	case json.Delim('['):
		for dec.More() {
			var pair []any
			if err := dec.Decode(&pair); err != nil {
				return nil, fmt.Errorf("read rank table: %w", err)
			}
			if len(pair) != 2 {
				return nil, fmt.Errorf("rank table pair has %d elements", len(pair))
			}
			record, ok := pair[1].(string)
			if !ok {
				return nil, errors.New("rank table record is not a string")
			}
			if err := add(fmt.Sprint(pair[0]), record); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("read rank table: unexpected token %v", tok)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read rank table: %w", err)
	}

	if count != NumHands {
		return nil, fmt.Errorf("rank table has %d hands, want %d", count, NumHands)
	}
	return t, nil
}

// LoadFile opens and loads a persisted table.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rank table: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// checkValue verifies a record describes the hand its key encodes.
func checkValue(h poker.Hand, v HandValue) error {
	if v.Strength < 1 || v.Strength > NumHands {
		return fmt.Errorf("hand id %d: strength %d out of range", v.ID, v.Strength)
	}
	for _, c := range v.Cards {
		if !h.Contains(c) {
			return fmt.Errorf("hand id %d: record card %s not in hand %s", v.ID, c, h)
		}
	}
	return nil
}
