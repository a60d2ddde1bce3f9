// Package corpus loads sentence-aligned parallel corpora.
//
// A parallel corpus is a pair of plain-text files holding one sentence per
// line, where line k of the english file translates line k of the foreign
// file. Tokens are separated by whitespace; no further normalization is
// applied.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds the length of a single corpus line in bytes.
const maxLineSize = 1024 * 1024

// Corpus holds a tokenized parallel corpus. English[k] and Foreign[k] form
// the k-th sentence pair.
type Corpus struct {
	English [][]string
	Foreign [][]string
}

// Len returns the number of sentence pairs.
func (c *Corpus) Len() int {
	return len(c.English)
}

// ReadParallel reads two sentence-aligned token streams. Every line becomes
// one sentence, so empty lines yield empty sentences and line order is
// preserved. The two streams must contain the same number of lines.
func ReadParallel(english, foreign io.Reader) (*Corpus, error) {
	englishSents, err := readSentences(english)
	if err != nil {
		return nil, fmt.Errorf("read english corpus: %w", err)
	}
	foreignSents, err := readSentences(foreign)
	if err != nil {
		return nil, fmt.Errorf("read foreign corpus: %w", err)
	}
	if len(englishSents) != len(foreignSents) {
		return nil, fmt.Errorf("corpora are not aligned: %d english sentences, %d foreign sentences",
			len(englishSents), len(foreignSents))
	}
	return &Corpus{English: englishSents, Foreign: foreignSents}, nil
}

// Load reads a parallel corpus from two files.
func Load(englishPath, foreignPath string) (*Corpus, error) {
	englishFile, err := os.Open(englishPath)
	if err != nil {
		return nil, err
	}
	defer englishFile.Close()

	foreignFile, err := os.Open(foreignPath)
	if err != nil {
		return nil, err
	}
	defer foreignFile.Close()

	return ReadParallel(englishFile, foreignFile)
}

func readSentences(r io.Reader) ([][]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var sentences [][]string
	for scanner.Scan() {
		sentences = append(sentences, strings.Fields(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sentences, nil
}
