// Package align represents word alignments between sentence pairs and
// merges directional alignments with the grow heuristic.
package align

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Point is one alignment link: foreign position F aligned to english
// position E. Positions are 1-based; E = 0 marks alignment to NULL.
type Point struct {
	F, E int
}

// Set is the alignment of one sentence pair.
type Set map[Point]bool

// Add inserts a point into the set.
func (s Set) Add(p Point) {
	s[p] = true
}

// Sorted returns the points ordered by foreign, then english position.
func (s Set) Sorted() []Point {
	points := make([]Point, 0, len(s))
	for p := range s {
		points = append(points, p)
	}
	sort.Slice(points, func(a, b int) bool {
		if points[a].F != points[b].F {
			return points[a].F < points[b].F
		}
		return points[a].E < points[b].E
	})
	return points
}

// Sets holds per-sentence alignments keyed by 1-based sentence index.
type Sets map[int]Set

// Direction tells which coordinate order an alignment file uses.
type Direction int

const (
	// EnglishSource marks files carrying "<k> <english> <foreign>" lines,
	// the decoder's output order when english is the source language.
	EnglishSource Direction = iota
	// ForeignSource marks files carrying "<k> <foreign> <english>" lines,
	// produced by decoding with the two languages swapped.
	ForeignSource
)

// ReadSets parses decoder output into per-sentence alignment sets,
// normalizing both coordinate orders to (foreign, english) points.
func ReadSets(r io.Reader, dir Direction) (Sets, error) {
	sets := make(Sets)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: want 3 fields, got %d", line, len(fields))
		}
		var nums [3]int
		for i, field := range fields {
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			nums[i] = n
		}
		p := Point{F: nums[1], E: nums[2]}
		if dir == EnglishSource {
			p = Point{F: nums[2], E: nums[1]}
		}
		k := nums[0]
		if sets[k] == nil {
			sets[k] = make(Set)
		}
		sets[k].Add(p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}
