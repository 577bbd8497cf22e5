// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package behavior

import (
	"math"
	"sort"
)

// counter tallies occurrences and remembers first-seen order so that
// equal counts rank in the order the keys were first observed.
type counter[K comparable] struct {
	order  []K
	counts map[K]int
}

type entry[K comparable] struct {
	key   K
	count int
}

func newCounter[K comparable]() *counter[K] {
	return &counter[K]{counts: make(map[K]int)}
}

func (c *counter[K]) add(k K) {
	c.addN(k, 1)
}

func (c *counter[K]) addN(k K, n int) {
	if _, ok := c.counts[k]; !ok {
		c.order = append(c.order, k)
	}
	c.counts[k] += n
}

func (c *counter[K]) len() int {
	return len(c.order)
}

// mostCommon returns up to n entries by descending count. n < 0 returns all.
func (c *counter[K]) mostCommon(n int) []entry[K] {
	out := make([]entry[K], 0, len(c.order))
	for _, k := range c.order {
		out = append(out, entry[K]{key: k, count: c.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func populationStdDev(xs []float64, avg float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var ss float64
	for _, x := range xs {
		d := x - avg
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// entropy returns the base-2 Shannon entropy of a histogram.
func entropy(counts []int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// olsSlope returns the least-squares slope of ys against their index.
func olsSlope(ys []float64) float64 {
	n := float64(len(ys))
	var xSum, ySum, xySum, x2Sum float64
	for i, y := range ys {
		x := float64(i)
		xSum += x
		ySum += y
		xySum += x * y
		x2Sum += x * x
	}
	denom := n*x2Sum - xSum*xSum
	if denom == 0 {
		return 0
	}
	return (n*xySum - xSum*ySum) / denom
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// appendBounded appends v and keeps only the newest limit values.
func appendBounded(xs []int, v, limit int) []int {
	out := append(append([]int{}, xs...), v)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func firstN(xs []string, n int) []string {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
