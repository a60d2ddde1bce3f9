package ibm

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/happyhackingspace/walign/corpus"
)

// testCorpus returns three sentence pairs in which "the" co-occurs with
// "la" and "house" with "maison" often enough to separate them.
func testCorpus() *corpus.Corpus {
	return &corpus.Corpus{
		English: [][]string{{"the", "house"}, {"the"}, {"house"}},
		Foreign: [][]string{{"la", "maison"}, {"la"}, {"maison"}},
	}
}

func TestBuildSupportAndInit(t *testing.T) {
	c := &corpus.Corpus{
		English: [][]string{{"the", "house"}},
		Foreign: [][]string{{"la", "maison"}},
	}
	m := NewModel(Model2)
	m.BuildSupport(c)
	m.Init()

	// Every english word, including NULL, supports both foreign words.
	for _, e := range []string{NULL, "the", "house"} {
		for _, f := range []string{"la", "maison"} {
			p, ok := m.T.Prob(e, f)
			if !ok {
				t.Fatalf("t(%q|%q) missing from support", f, e)
			}
			if p != 0.5 {
				t.Errorf("t(%q|%q) = %v, want 0.5", f, e, p)
			}
		}
	}

	// Both foreign positions support english positions 0..2 uniformly.
	for i := 1; i <= 2; i++ {
		for j := 0; j <= 2; j++ {
			p, ok := m.Q.Prob(PosKey{I: i, L: 2, M: 2}, j)
			if !ok {
				t.Fatalf("q(%d|%d,2,2) missing from support", j, i)
			}
			if math.Abs(p-1.0/3) > 1e-12 {
				t.Errorf("q(%d|%d,2,2) = %v, want 1/3", j, i, p)
			}
		}
	}
}

func TestBuildSupportDuplicateTokens(t *testing.T) {
	c := &corpus.Corpus{
		English: [][]string{{"the", "the"}},
		Foreign: [][]string{{"la", "la"}},
	}
	m := NewModel(Model1)
	m.BuildSupport(c)
	m.Init()

	// Support insertion is idempotent, so the row has one entry.
	if p, _ := m.T.Prob("the", "la"); p != 1.0 {
		t.Errorf("t(\"la\"|\"the\") = %v, want 1.0", p)
	}
}

func TestEMStepFirstIteration(t *testing.T) {
	m := NewModel(Model1)
	m.BuildSupport(testCorpus())
	m.Init()

	if _, err := m.EMStep(testCorpus(), Model1); err != nil {
		t.Fatalf("EMStep() error = %v", err)
	}

	// All entries start at 0.5, so in pair 1 each of NULL/the/house takes
	// responsibility 1/3 for "la", and in pair 2 NULL/the take 1/2 each:
	// count(the,la) = 1/3 + 1/2 = 5/6, count(the,maison) = 1/3,
	// so t(la|the) = (5/6)/(7/6) = 5/7.
	p, _ := m.T.Prob("the", "la")
	if math.Abs(p-5.0/7) > 1e-9 {
		t.Errorf("t(\"la\"|\"the\") after one iteration = %v, want 5/7", p)
	}
}

func TestModel1Convergence(t *testing.T) {
	config := TrainConfig{Order: Model1, Model1Iterations: 10}
	m, err := Train(testCorpus(), config)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	if p, _ := m.T.Prob("the", "la"); p < 0.9 {
		t.Errorf("t(\"la\"|\"the\") = %v, want > 0.9", p)
	}
	if p, _ := m.T.Prob("house", "maison"); p < 0.9 {
		t.Errorf("t(\"maison\"|\"house\") = %v, want > 0.9", p)
	}
}

func TestEMStepMonotonicLikelihood(t *testing.T) {
	m := NewModel(Model1)
	m.BuildSupport(testCorpus())
	m.Init()

	prev := math.Inf(-1)
	for n := range 8 {
		ll, err := m.EMStep(testCorpus(), Model1)
		if err != nil {
			t.Fatalf("EMStep() error = %v", err)
		}
		if ll < prev-1e-9 {
			t.Errorf("log-likelihood decreased at iteration %d: %v -> %v", n+1, prev, ll)
		}
		prev = ll
		checkRowSums(t, m)
	}
}

func TestModel2Training(t *testing.T) {
	m, err := Train(testCorpus(), DefaultTrainConfig())
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	checkRowSums(t, m)

	if p, _ := m.T.Prob("the", "la"); p < 0.9 {
		t.Errorf("t(\"la\"|\"the\") = %v, want > 0.9", p)
	}

	// The trained distortion table should prefer the diagonal.
	a, err := m.Align([]string{"the", "house"}, []string{"la", "maison"})
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	if want := []int{1, 2}; !reflect.DeepEqual(a, want) {
		t.Errorf("Align() = %v, want %v", a, want)
	}
}

// checkRowSums verifies the sum-to-1 invariant of both tables.
func checkRowSums(t *testing.T, m *Model) {
	t.Helper()
	for _, e := range m.T.Conds() {
		sum := 0.0
		for _, f := range m.T.Outcomes(e) {
			p, _ := m.T.Prob(e, f)
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("t row %q sums to %v, want 1", e, sum)
		}
	}
	for _, key := range m.Q.Conds() {
		sum := 0.0
		for _, j := range m.Q.Outcomes(key) {
			p, _ := m.Q.Prob(key, j)
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("q row %v sums to %v, want 1", key, sum)
		}
	}
}

func TestEMStepOrderMismatch(t *testing.T) {
	m := NewModel(Model1)
	m.BuildSupport(testCorpus())
	m.Init()

	if _, err := m.EMStep(testCorpus(), Model2); err == nil {
		t.Error("EMStep(model 2) on a model-1 model should fail")
	}
	if _, err := m.EMStep(testCorpus(), 3); err == nil {
		t.Error("EMStep(model 3) should fail")
	}
}

func TestTrainValidation(t *testing.T) {
	if _, err := Train(testCorpus(), TrainConfig{Order: 3}); err == nil {
		t.Error("Train() with order 3 should fail")
	}
	if _, err := Train(testCorpus(), TrainConfig{Order: Model1, Model1Iterations: -1}); err == nil {
		t.Error("Train() with negative iterations should fail")
	}

	unaligned := &corpus.Corpus{
		English: [][]string{{"the"}, {"house"}},
		Foreign: [][]string{{"la"}},
	}
	if _, err := Train(unaligned, DefaultTrainConfig()); err == nil {
		t.Error("Train() on an unaligned corpus should fail")
	}
}

func TestAlignModel2(t *testing.T) {
	m := NewModel(Model2)
	m.T.Set(NULL, "la", 0.05)
	m.T.Set(NULL, "maison", 0.05)
	m.T.Set("the", "la", 0.9)
	m.T.Set("the", "maison", 0.1)
	m.T.Set("house", "la", 0.1)
	m.T.Set("house", "maison", 0.9)
	for i := 1; i <= 2; i++ {
		for j := 0; j <= 2; j++ {
			m.Q.Set(PosKey{I: i, L: 2, M: 2}, j, 1.0/3)
		}
	}

	a, err := m.Align([]string{"the", "house"}, []string{"la", "maison"})
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	if want := []int{1, 2}; !reflect.DeepEqual(a, want) {
		t.Errorf("Align() = %v, want %v", a, want)
	}
}

func TestAlignModel1(t *testing.T) {
	m := NewModel(Model1)
	m.T.Set(NULL, "la", 0.1)
	m.T.Set("the", "la", 0.8)
	m.T.Set("house", "la", 0.1)

	a, err := m.Align([]string{"the", "house"}, []string{"la"})
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	if want := []int{1}; !reflect.DeepEqual(a, want) {
		t.Errorf("Align() = %v, want %v", a, want)
	}
}

func TestAlignTieBreak(t *testing.T) {
	// Equal scores keep the lowest english position.
	m := NewModel(Model1)
	m.T.Set(NULL, "x", 0.2)
	m.T.Set("a", "x", 0.4)
	m.T.Set("b", "x", 0.4)

	a, err := m.Align([]string{"a", "b"}, []string{"x"})
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	if a[0] != 1 {
		t.Errorf("Align() = %v, want position 1 on a tie", a)
	}

	// A tie with NULL keeps NULL.
	m.T.Set(NULL, "x", 0.4)
	m.T.Set("b", "x", 0.3)
	a, err = m.Align([]string{"a", "b"}, []string{"x"})
	if err != nil {
		t.Fatalf("Align() error = %v", err)
	}
	if a[0] != 0 {
		t.Errorf("Align() = %v, want NULL alignment on a tie with NULL", a)
	}
}

func TestAlignMissingSupport(t *testing.T) {
	m := NewModel(Model1)
	m.T.Set(NULL, "la", 1.0)

	_, err := m.Align([]string{"the"}, []string{"inconnu"})
	if err == nil {
		t.Fatal("Align() with an unseen foreign word should fail")
	}
	if !strings.Contains(err.Error(), "not in support") {
		t.Errorf("error = %q, want support violation", err)
	}
}

func TestWriteTranslationTable(t *testing.T) {
	tbl := NewTable[string, string]()
	tbl.Set("the", "maison", 0.5)
	tbl.Set("the", "la", 0.5)
	tbl.Set(NULL, "la", 0.25)
	tbl.Set(NULL, "maison", 0.75)

	var buf bytes.Buffer
	if err := WriteTranslationTable(&buf, tbl); err != nil {
		t.Fatalf("WriteTranslationTable() error = %v", err)
	}
	want := "NULL la 2.500000E-01\n" +
		"NULL maison 7.500000E-01\n" +
		"the la 5.000000E-01\n" +
		"the maison 5.000000E-01\n"
	if buf.String() != want {
		t.Errorf("WriteTranslationTable() = %q, want %q", buf.String(), want)
	}
}

func TestWriteDistortionTable(t *testing.T) {
	tbl := NewTable[PosKey, int]()
	tbl.Set(PosKey{I: 2, L: 2, M: 2}, 2, 0.5)
	tbl.Set(PosKey{I: 1, L: 2, M: 2}, 1, 1.0/3)
	tbl.Set(PosKey{I: 1, L: 2, M: 2}, 0, 1.0/3)

	var buf bytes.Buffer
	if err := WriteDistortionTable(&buf, tbl); err != nil {
		t.Fatalf("WriteDistortionTable() error = %v", err)
	}
	want := "1 2 2 0 3.333333E-01\n" +
		"1 2 2 1 3.333333E-01\n" +
		"2 2 2 2 5.000000E-01\n"
	if buf.String() != want {
		t.Errorf("WriteDistortionTable() = %q, want %q", buf.String(), want)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	trained, err := Train(testCorpus(), DefaultTrainConfig())
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	base := filepath.Join(t.TempDir(), "corpus.en")
	if err := SaveModel(trained, base); err != nil {
		t.Fatalf("SaveModel() error = %v", err)
	}

	// Atomic writes leave only the two table files behind.
	entries, err := os.ReadDir(filepath.Dir(base))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("table directory has %d files, want 2", len(entries))
	}

	loaded, err := LoadModel(base, Model2)
	if err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}

	// Values survive the scientific-notation round trip to 1e-6.
	for _, e := range trained.T.Conds() {
		for _, f := range trained.T.Outcomes(e) {
			want, _ := trained.T.Prob(e, f)
			got, ok := loaded.T.Prob(e, f)
			if !ok {
				t.Fatalf("t(%q|%q) lost in round trip", f, e)
			}
			if math.Abs(got-want) > 1e-6 {
				t.Errorf("t(%q|%q) = %v after round trip, want %v", f, e, got, want)
			}
		}
	}
	for _, key := range trained.Q.Conds() {
		for _, j := range trained.Q.Outcomes(key) {
			want, _ := trained.Q.Prob(key, j)
			got, ok := loaded.Q.Prob(key, j)
			if !ok {
				t.Fatalf("q(%d|%v) lost in round trip", j, key)
			}
			if math.Abs(got-want) > 1e-6 {
				t.Errorf("q(%d|%v) = %v after round trip, want %v", j, key, got, want)
			}
		}
	}
}

func TestLoadModelModel1(t *testing.T) {
	m := NewModel(Model1)
	m.T.Set("the", "la", 1.0)

	base := filepath.Join(t.TempDir(), "corpus.en")
	if err := SaveModel(m, base); err != nil {
		t.Fatalf("SaveModel() error = %v", err)
	}
	if _, err := os.Stat(base + DistortionExt); !os.IsNotExist(err) {
		t.Error("model 1 should not write a distortion table")
	}
	if _, err := LoadModel(base, Model1); err != nil {
		t.Errorf("LoadModel() error = %v", err)
	}
}

func TestReadTranslationTableErrors(t *testing.T) {
	if _, err := ReadTranslationTable(strings.NewReader("the la\n")); err == nil {
		t.Error("short line should fail")
	}
	_, err := ReadTranslationTable(strings.NewReader("the la 0.5\nthe maison x\n"))
	if err == nil {
		t.Fatal("unparseable value should fail")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %q, want line number 2", err)
	}
}

func TestReadDistortionTableErrors(t *testing.T) {
	if _, err := ReadDistortionTable(strings.NewReader("1 2 2 0\n")); err == nil {
		t.Error("short line should fail")
	}
	if _, err := ReadDistortionTable(strings.NewReader("x 2 2 0 0.5\n")); err == nil {
		t.Error("unparseable position should fail")
	}
}

func TestTableUpdateMissingCounts(t *testing.T) {
	tbl := NewTable[string, string]()
	tbl.Insert("a", "b")

	if err := tbl.Update(NewCounts[string, string]()); err == nil {
		t.Error("Update() with no counts for a supported condition should fail")
	}

	counts := NewCounts[string, string]()
	counts.Add("a", "c", 1)
	if err := tbl.Update(counts); err == nil {
		t.Error("Update() with no count for a supported pair should fail")
	}
}
