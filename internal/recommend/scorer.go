// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package recommend

import (
	"math"
	"sort"

	"github.com/tomtom215/lectern/internal/models"
)

const (
	// neutralScore is used for signals that have no data yet.
	neutralScore = 0.5

	categoryShare  = 0.6
	modeMatchBonus = 0.4

	levelMatch    = 1.0
	levelMismatch = 0.3

	// HighEngagementScore is the engagement needed for a document to seed content similarity.
	HighEngagementScore = 0.7

	rareThemeMaxCount = 2
)

// levelComplexities maps a reading level to the complexity tiers that suit it.
var levelComplexities = map[models.ReadingLevel][]models.Complexity{
	models.LevelCasual:   {models.ComplexitySimple, models.ComplexityMedium},
	models.LevelDetailed: {models.ComplexityMedium, models.ComplexityComplex},
	models.LevelAcademic: {models.ComplexityComplex, models.ComplexityAdvanced},
}

// Scorer computes composite scores over a Snapshot. It holds no state.
type Scorer struct {
	cfg *Config
}

// NewScorer creates a scorer.
func NewScorer(cfg *Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// InterestAlignment is the Jaccard similarity between the interest set and
// the document's themes and categories. Either set empty scores 0.
func InterestAlignment(interests []string, doc *models.Document) float64 {
	a := toSet(interests)
	b := toSet(doc.Metadata.Themes)
	for _, c := range doc.Metadata.Categories {
		b[c] = struct{}{}
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// PatternMatch scores category overlap with the preferred content types and
// a matching reading mode. A missing pattern scores 0.5.
func PatternMatch(pattern *models.Pattern, preferred models.ReadingMode, doc *models.Document) float64 {
	if pattern == nil {
		return neutralScore
	}

	var score float64
	if n := len(pattern.PreferredContentTypes); n > 0 {
		prefs := toSet(pattern.PreferredContentTypes)
		overlap := 0
		for c := range toSet(doc.Metadata.Categories) {
			if _, ok := prefs[c]; ok {
				overlap++
			}
		}
		score += float64(overlap) / float64(n) * categoryShare
	}
	if doc.ReadingMode == preferred {
		score += modeMatchBonus
	}
	return math.Min(score, 1.0)
}

// ContentSimilarity is the mean stored similarity between docID and the
// reader's high-engagement documents. Readers with no high-engagement
// documents score 0.5; no matching similarity records score 0.
func ContentSimilarity(docID int64, highEngagement map[int64]struct{}, sims []models.DocumentSimilarity) float64 {
	if len(highEngagement) == 0 {
		return neutralScore
	}

	var sum float64
	n := 0
	for i := range sims {
		other := sims[i].Other(docID)
		if other == 0 {
			continue
		}
		if _, ok := highEngagement[other]; ok {
			sum += sims[i].Score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Trending decays recent popularity by document age. Documents dated
// after snap.Now count as new.
func (s *Scorer) Trending(reads int, doc *models.Document, snap *Snapshot) float64 {
	t := s.cfg.Trending
	daysOld := max(int(snap.Now.Sub(doc.CreatedAt).Hours()/24), 0)
	age := math.Max(t.MinAgeFactor, 1-float64(daysOld)/float64(t.MaxAgeDays))
	return math.Min(float64(reads)/float64(t.SaturationReads), 1.0) * age
}

// LevelMatch is 1.0 when the document complexity suits the reading level,
// else 0.3. Unknown levels accept only medium documents.
func LevelMatch(level models.ReadingLevel, doc *models.Document) float64 {
	tiers, ok := levelComplexities[level]
	if !ok {
		tiers = []models.Complexity{models.ComplexityMedium}
	}
	c := doc.Complexity()
	for _, t := range tiers {
		if t == c {
			return levelMatch
		}
	}
	return levelMismatch
}

// Score computes the composite score of one candidate.
func (s *Scorer) Score(snap *Snapshot, highEngagement map[int64]struct{}, doc *models.Document) ScoredDocument {
	b := ScoreBreakdown{
		InterestAlignment: InterestAlignment(snap.Profile.Interests, doc),
		PatternMatch:      PatternMatch(snap.Pattern, snap.Profile.PreferredMode, doc),
		ContentSimilarity: ContentSimilarity(doc.ID, highEngagement, snap.Similarities),
		Trending:          s.Trending(snap.RecentReads[doc.ID], doc, snap),
		LevelMatch:        LevelMatch(snap.Profile.ReadingLevel, doc),
	}
	w := s.cfg.Weights
	score := b.InterestAlignment*w.Interest +
		b.PatternMatch*w.Pattern +
		b.ContentSimilarity*w.Similarity +
		b.Trending*w.Trending +
		b.LevelMatch*w.Level

	return ScoredDocument{
		Document:  *doc,
		Score:     math.Max(0, math.Min(score, 1.0)),
		Breakdown: b,
	}
}

// Personalized ranks all candidates above MinScore and returns the top k.
func (s *Scorer) Personalized(snap *Snapshot, k int) []ScoredDocument {
	high := toIDSet(snap.HighEngagementDocs)
	out := make([]ScoredDocument, 0, len(snap.Candidates))
	for i := range snap.Candidates {
		sd := s.Score(snap, high, &snap.Candidates[i])
		if sd.Score > s.cfg.MinScore {
			out = append(out, sd)
		}
	}
	sortRanked(out)
	return truncate(out, k)
}

// RareThemes returns the themes seen at most twice in the reader's history,
// in first-seen order.
func RareThemes(readThemes []string) []string {
	counts := make(map[string]int, len(readThemes))
	var order []string
	for _, t := range readThemes {
		if _, ok := counts[t]; !ok {
			order = append(order, t)
		}
		counts[t]++
	}
	rare := make([]string, 0, len(order))
	for _, t := range order {
		if counts[t] <= rareThemeMaxCount {
			rare = append(rare, t)
		}
	}
	return rare
}

// Discovery returns up to k candidates that carry a rare theme, newest first.
// Discovery does not apply MinScore.
func (s *Scorer) Discovery(snap *Snapshot, k int) []ScoredDocument {
	rare := toSet(RareThemes(snap.ReadThemes))
	if len(rare) == 0 {
		return []ScoredDocument{}
	}

	high := toIDSet(snap.HighEngagementDocs)
	out := make([]ScoredDocument, 0)
	for i := range snap.Candidates {
		doc := &snap.Candidates[i]
		if !hasAny(doc.Metadata.Themes, rare) {
			continue
		}
		out = append(out, s.Score(snap, high, doc))
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i].Document, &out[j].Document
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return truncate(out, k)
}

// ReadingSpeed returns the reader's recent mean speed, or the default when
// the reader has no pattern or no recent analytics.
func (s *Scorer) ReadingSpeed(snap *Snapshot) float64 {
	if snap.Pattern == nil || len(snap.RecentSpeeds) == 0 {
		return s.cfg.TimeBudget.DefaultWPM
	}
	var sum float64
	for _, v := range snap.RecentSpeeds {
		sum += v
	}
	if avg := sum / float64(len(snap.RecentSpeeds)); avg > 0 {
		return avg
	}
	return s.cfg.TimeBudget.DefaultWPM
}

// TimeBudgeted keeps the documents of the default personalized ranking whose
// estimated words lie within the tolerance of minutes * speed.
func (s *Scorer) TimeBudgeted(snap *Snapshot, minutes float64, k int) ([]ScoredDocument, float64, float64) {
	speed := s.ReadingSpeed(snap)
	target := minutes * speed
	lo := target * (1 - s.cfg.TimeBudget.Tolerance)
	hi := target * (1 + s.cfg.TimeBudget.Tolerance)

	ranked := s.Personalized(snap, s.cfg.Limits.DefaultK)
	out := make([]ScoredDocument, 0, len(ranked))
	for _, sd := range ranked {
		words := float64(sd.Document.Metadata.EstimatedWords)
		if words >= lo && words <= hi {
			out = append(out, sd)
		}
	}
	return truncate(out, k), speed, target
}

// sortRanked orders by score, then newer creation time, then lower id.
func sortRanked(items []ScoredDocument) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		a, b := &items[i].Document, &items[j].Document
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func truncate(items []ScoredDocument, k int) []ScoredDocument {
	if k >= 0 && len(items) > k {
		return items[:k]
	}
	return items
}

func toSet(xs []string) map[string]struct{} {
	out := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		out[x] = struct{}{}
	}
	return out
}

func toIDSet(ids []int64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func hasAny(xs []string, set map[string]struct{}) bool {
	for _, x := range xs {
		if _, ok := set[x]; ok {
			return true
		}
	}
	return false
}
