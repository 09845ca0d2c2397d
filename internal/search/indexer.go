package search

import (
	"sort"
	"strconv"
	"strings"

	"FlowScope/internal/model"
)

// Kind restricts which fields a query is matched against.
type Kind string

const (
	KindAll      Kind = "all"
	KindIP       Kind = "ip"
	KindPort     Kind = "port"
	KindProtocol Kind = "protocol"
	KindNode     Kind = "node"
)

// Query is one search request over a topology.
type Query struct {
	Text          string `json:"text"`
	Kind          Kind   `json:"kind"`
	CaseSensitive bool   `json:"case_sensitive"`
	ExactMatch    bool   `json:"exact_match"`
}

// FieldMatch records a single matched field with highlight offsets into
// the matched value.
type FieldMatch struct {
	Field string  `json:"field"`
	Value string  `json:"value"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Score float64 `json:"score"`
}

// Result is one node or edge that matched, with its per-field matches and
// an overall relevance in [0,1].
type Result struct {
	EntityKind string       `json:"entity_kind"` // "node" or "edge"
	EntityID   string       `json:"entity_id"`
	Relevance  float64      `json:"relevance"`
	Matches    []FieldMatch `json:"matches"`
}

// Search scans the topology for the query and returns results sorted by
// descending relevance. An empty query or no match yields an empty slice,
// never an error.
func Search(topo *model.NetworkTopology, q Query) []Result {
	if topo == nil || q.Text == "" {
		return nil
	}
	if q.Kind == "" {
		q.Kind = KindAll
	}

	var results []Result
	for i := range topo.Nodes {
		if r, ok := matchNode(&topo.Nodes[i], q); ok {
			results = append(results, r)
		}
	}
	for i := range topo.Edges {
		if r, ok := matchEdge(&topo.Edges[i], q); ok {
			results = append(results, r)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Relevance != results[j].Relevance {
			return results[i].Relevance > results[j].Relevance
		}
		return results[i].EntityID < results[j].EntityID
	})
	return results
}

func matchNode(node *model.NetworkNode, q Query) (Result, bool) {
	var matches []FieldMatch

	if q.Kind == KindAll || q.Kind == KindNode {
		matches = appendMatch(matches, "id", node.ID, q)
		matches = appendMatch(matches, "label", node.Label, q)
		matches = appendMatch(matches, "type", string(node.Type), q)
		matches = appendMatch(matches, "name", node.Name, q)
	}
	if q.Kind == KindAll || q.Kind == KindIP {
		for _, ip := range node.IPs {
			matches = appendMatch(matches, "ip", ip, q)
		}
		matches = appendMatch(matches, "cidr", node.CIDR, q)
	}

	if len(matches) == 0 {
		return Result{}, false
	}
	return Result{
		EntityKind: "node",
		EntityID:   node.ID,
		Relevance:  meanScore(matches),
		Matches:    matches,
	}, true
}

func matchEdge(edge *model.NetworkEdge, q Query) (Result, bool) {
	var matches []FieldMatch

	if q.Kind == KindAll || q.Kind == KindProtocol {
		for _, proto := range edge.Protocols {
			matches = appendMatch(matches, "protocol", proto, q)
		}
	}
	if q.Kind == KindAll || q.Kind == KindPort {
		for _, port := range edge.Ports {
			matches = appendMatch(matches, "port", strconv.Itoa(int(port)), q)
		}
	}

	if len(matches) == 0 {
		return Result{}, false
	}
	return Result{
		EntityKind: "edge",
		EntityID:   edge.ID,
		Relevance:  meanScore(matches),
		Matches:    matches,
	}, true
}

// appendMatch matches the query against one field value. Exact match
// scores 1.0; a substring match at index i in a value of length n scores
// 1 - i/n, so earlier matches rank higher.
func appendMatch(matches []FieldMatch, field, value string, q Query) []FieldMatch {
	if value == "" {
		return matches
	}

	haystack, needle := value, q.Text
	if !q.CaseSensitive {
		haystack = strings.ToLower(haystack)
		needle = strings.ToLower(needle)
	}

	if q.ExactMatch {
		if haystack != needle {
			return matches
		}
		return append(matches, FieldMatch{
			Field: field,
			Value: value,
			Start: 0,
			End:   len(value),
			Score: 1.0,
		})
	}

	idx := strings.Index(haystack, needle)
	if idx < 0 {
		return matches
	}
	score := 1.0
	if haystack != needle {
		score = 1.0 - float64(idx)/float64(len(haystack))
	}
	return append(matches, FieldMatch{
		Field: field,
		Value: value,
		Start: idx,
		End:   idx + len(needle),
		Score: score,
	})
}

func meanScore(matches []FieldMatch) float64 {
	var sum float64
	for _, m := range matches {
		sum += m.Score
	}
	return sum / float64(len(matches))
}
