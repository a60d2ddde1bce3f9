package ibm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Table file extensions, named after the parameters they hold.
const (
	TranslationExt = ".tfe"
	DistortionExt  = ".qji"
)

// SaveModel writes the translation table to base+".tfe" and, for model 2,
// the distortion table to base+".qji". Each file is written to a temporary
// name and renamed into place so a failed run never leaves partial tables.
func SaveModel(m *Model, base string) error {
	err := writeFileAtomic(base+TranslationExt, func(w io.Writer) error {
		return WriteTranslationTable(w, m.T)
	})
	if err != nil {
		return fmt.Errorf("save translation table: %w", err)
	}
	if m.Order != Model2 {
		return nil
	}
	err = writeFileAtomic(base+DistortionExt, func(w io.Writer) error {
		return WriteDistortionTable(w, m.Q)
	})
	if err != nil {
		return fmt.Errorf("save distortion table: %w", err)
	}
	return nil
}

// LoadModel reads previously saved tables from base+".tfe" and, for model 2,
// base+".qji". Loading derives no support: the entries present in the files
// are the entire support.
func LoadModel(base string, order int) (*Model, error) {
	if order != Model1 && order != Model2 {
		return nil, fmt.Errorf("unknown model order %d", order)
	}
	m := NewModel(order)

	file, err := os.Open(base + TranslationExt)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if m.T, err = ReadTranslationTable(file); err != nil {
		return nil, fmt.Errorf("load translation table: %w", err)
	}

	if order != Model2 {
		return m, nil
	}
	qfile, err := os.Open(base + DistortionExt)
	if err != nil {
		return nil, err
	}
	defer qfile.Close()
	if m.Q, err = ReadDistortionTable(qfile); err != nil {
		return nil, fmt.Errorf("load distortion table: %w", err)
	}
	return m, nil
}

// WriteTranslationTable writes one "<e> <f> <value>" line per entry, with
// the value in scientific notation. Rows and entries are sorted so equal
// tables produce equal bytes.
func WriteTranslationTable(w io.Writer, t *Table[string, string]) error {
	bw := bufio.NewWriter(w)
	conds := t.Conds()
	sort.Strings(conds)
	for _, e := range conds {
		outcomes := t.Outcomes(e)
		sort.Strings(outcomes)
		for _, f := range outcomes {
			p, _ := t.Prob(e, f)
			if _, err := fmt.Fprintf(bw, "%s %s %E\n", e, f, p); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// ReadTranslationTable parses "<e> <f> <value>" lines into a table.
func ReadTranslationTable(r io.Reader) (*Table[string, string], error) {
	t := NewTable[string, string]()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: want 3 fields, got %d", line, len(fields))
		}
		p, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t.Set(fields[0], fields[1], p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// WriteDistortionTable writes one "<i> <l> <m> <j> <value>" line per entry,
// sorted by position key and english position.
func WriteDistortionTable(w io.Writer, q *Table[PosKey, int]) error {
	bw := bufio.NewWriter(w)
	keys := q.Conds()
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].I != keys[b].I {
			return keys[a].I < keys[b].I
		}
		if keys[a].L != keys[b].L {
			return keys[a].L < keys[b].L
		}
		return keys[a].M < keys[b].M
	})
	for _, key := range keys {
		outcomes := q.Outcomes(key)
		sort.Ints(outcomes)
		for _, j := range outcomes {
			p, _ := q.Prob(key, j)
			if _, err := fmt.Fprintf(bw, "%d %d %d %d %E\n", key.I, key.L, key.M, j, p); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// ReadDistortionTable parses "<i> <l> <m> <j> <value>" lines into a table.
func ReadDistortionTable(r io.Reader) (*Table[PosKey, int], error) {
	q := NewTable[PosKey, int]()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) != 5 {
			return nil, fmt.Errorf("line %d: want 5 fields, got %d", line, len(fields))
		}
		var nums [4]int
		for i, field := range fields[:4] {
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			nums[i] = n
		}
		p, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		q.Set(PosKey{I: nums[0], L: nums[1], M: nums[2]}, nums[3], p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return q, nil
}

// writeFileAtomic writes through a temp file in the destination directory
// and renames it into place.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
