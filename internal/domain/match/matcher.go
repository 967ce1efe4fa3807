// Package match implements the Reference Matcher (spec.md §4.4): exact and
// approximate lookups over an in-memory target snapshot. Name-based
// identity is authoritative for SKIP decisions; similarity search here is
// advisory only and never auto-binds.
package match

import (
	"sort"
	"strings"

	"github.com/alexisbeaulieu97/tagsync/internal/domain/entity"
)

// Matcher queries a fixed target snapshot.
type Matcher struct {
	snapshot entity.Snapshot
}

// New constructs a Matcher over the given snapshot.
func New(snapshot entity.Snapshot) *Matcher {
	return &Matcher{snapshot: snapshot}
}

// FindTagByExactName looks up a tag by exact name.
func (m *Matcher) FindTagByExactName(name string) (*entity.Tag, bool) {
	return m.snapshot.FindTagByName(name)
}

// FindTriggerByExactName looks up a trigger by exact name.
func (m *Matcher) FindTriggerByExactName(name string) (*entity.Trigger, bool) {
	return m.snapshot.FindTriggerByName(name)
}

// FindVariableByExactName looks up a variable by exact name.
func (m *Matcher) FindVariableByExactName(name string) (*entity.Variable, bool) {
	return m.snapshot.FindVariableByName(name)
}

// FindTemplateByExactName looks up a template by exact name.
func (m *Matcher) FindTemplateByExactName(name string) (*entity.Template, bool) {
	return m.snapshot.FindTemplateByName(name)
}

// FindGA4TagsByEventName returns tags whose "eventName" parameter matches
// the given event - used to check whether a tag is already present in the
// target by its functional identity rather than its name.
func (m *Matcher) FindGA4TagsByEventName(event string) []entity.Tag {
	var out []entity.Tag
	for _, tag := range m.snapshot.Tags {
		for _, p := range tag.Params {
			if p.Key == "eventName" && p.Value == event {
				out = append(out, tag)
				break
			}
		}
	}
	return out
}

// SearchOptions configures a fuzzy name search.
type SearchOptions struct {
	TopK      int
	Threshold float64 // in [0, 100]
}

// ScoredTag pairs a tag with its similarity score.
type ScoredTag struct {
	Tag   entity.Tag
	Score float64
}

// SearchTagsByName ranks tags by a similarity score combining token Jaccard
// of space/hyphen/underscore-separated segments with an exact-prefix bonus, per
// spec.md §4.4.
func (m *Matcher) SearchTagsByName(query string, opts SearchOptions) []ScoredTag {
	var scored []ScoredTag
	for _, tag := range m.snapshot.Tags {
		score := NameSimilarity(query, tag.Name)
		if score >= opts.Threshold {
			scored = append(scored, ScoredTag{Tag: tag, Score: score})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if opts.TopK > 0 && len(scored) > opts.TopK {
		scored = scored[:opts.TopK]
	}
	return scored
}

// NameSimilarity scores two names on a 0-100 scale: token Jaccard of their
// space/hyphen/underscore-separated segments, plus a flat bonus when one is an exact
// prefix of the other.
func NameSimilarity(a, b string) float64 {
	tokensA := tokenize(a)
	tokensB := tokenize(b)
	jaccard := jaccardScore(tokensA, tokensB) * 100

	bonus := 0.0
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != "" && lb != "" && (strings.HasPrefix(lb, la) || strings.HasPrefix(la, lb)) {
		bonus = 15
	}

	score := jaccard + bonus
	if score > 100 {
		score = 100
	}
	return score
}

func tokenize(s string) map[string]struct{} {
	s = strings.ToLower(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func jaccardScore(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// SimilarOptions configures FindSimilarTags.
type SimilarOptions struct {
	Threshold float64
}

// ScoredSimilarTag carries the combined-dimension score for FindSimilarTags.
type ScoredSimilarTag struct {
	Tag             entity.Tag
	NameScore       float64
	TypeMatches     bool
	ParamSimilarity float64
	Combined        float64
}

// FindSimilarTags combines name similarity, type equality, and
// parameter-subset similarity, each dimension weighted and summed, then
// thresholded - spec.md §4.4. Weights: name 50%, type 25%, params 25%.
func (m *Matcher) FindSimilarTags(reference entity.Tag, opts SimilarOptions) []ScoredSimilarTag {
	var out []ScoredSimilarTag
	for _, tag := range m.snapshot.Tags {
		if tag.ID == reference.ID {
			continue
		}
		nameScore := NameSimilarity(reference.Name, tag.Name)
		typeMatch := tag.Type == reference.Type
		paramScore := paramSubsetSimilarity(reference.Params, tag.Params)

		typeComponent := 0.0
		if typeMatch {
			typeComponent = 100
		}
		combined := nameScore*0.5 + typeComponent*0.25 + paramScore*0.25

		if combined >= opts.Threshold {
			out = append(out, ScoredSimilarTag{
				Tag:             tag,
				NameScore:       nameScore,
				TypeMatches:     typeMatch,
				ParamSimilarity: paramScore,
				Combined:        combined,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Combined > out[j].Combined })
	return out
}

// paramSubsetSimilarity scores what fraction of reference's top-level
// (key,value) pairs are also present, unchanged, in candidate - a coarse
// parameter-subset measure on a 0-100 scale.
func paramSubsetSimilarity(reference, candidate []entity.Param) float64 {
	if len(reference) == 0 {
		return 100
	}
	candidateIndex := make(map[string]string, len(candidate))
	for _, p := range candidate {
		candidateIndex[p.Key] = p.Value
	}
	matches := 0
	for _, p := range reference {
		if v, ok := candidateIndex[p.Key]; ok && v == p.Value {
			matches++
		}
	}
	return float64(matches) / float64(len(reference)) * 100
}
