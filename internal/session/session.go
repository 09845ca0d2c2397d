package session

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"FlowScope/internal/filter"
	"FlowScope/internal/model"
	"FlowScope/internal/search"
	"FlowScope/internal/stats"
	"FlowScope/internal/topology"
)

// savedFilterPrefix namespaces saved-filter keys inside the store.
const savedFilterPrefix = "filter/"

// Session is the explicit state container for one analysis session: the
// ingested record set, the topology derived from it, the active filter
// criteria, and the views derived from those. Derived views are recomputed
// when records arrive or criteria change, never lazily, so reads are
// consistent snapshots. Safe for concurrent use.
type Session struct {
	mu sync.RWMutex

	records  []model.FlowRecord
	builder  *topology.Builder
	topo     *model.NetworkTopology
	criteria model.FilterCriteria

	filtered     []model.FlowRecord
	filteredTopo *model.NetworkTopology
	snapshot     *stats.Snapshot

	topN  int
	store model.Store
}

// New creates an empty session. store receives saved filters and may be
// nil when persistence is not wired. topN bounds the ranked statistics
// tables; zero keeps every row.
func New(store model.Store, topN int) *Session {
	s := &Session{
		builder: topology.NewBuilder(),
		topo:    &model.NetworkTopology{},
		topN:    topN,
		store:   store,
	}
	s.recompute()
	return s
}

// Ingest appends a batch of records and recomputes the derived views.
// Records are never mutated after ingestion.
func (s *Session) Ingest(records ...model.FlowRecord) {
	if len(records) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, records...)
	for i := range records {
		s.builder.Add(&records[i])
	}
	s.topo = s.builder.Build()
	s.recompute()
}

// SetCriteria replaces the filter criteria wholesale and recomputes the
// derived views once. Malformed CIDR rules stay permissively non-matching;
// use Validate on the criteria first for strict handling.
func (s *Session) SetCriteria(c model.FilterCriteria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = c
	s.recompute()
}

// recompute rebuilds filtered records, reduced topology and statistics
// from the current records and criteria. Callers hold the write lock.
func (s *Session) recompute() {
	s.filtered = filter.Apply(s.records, &s.criteria)
	s.filteredTopo = topology.Reduce(s.topo, s.filtered, s.criteria.ActiveOnly)
	s.snapshot = stats.Aggregate(s.filtered, s.topN)
}

// Criteria returns the active filter criteria.
func (s *Session) Criteria() model.FilterCriteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria
}

// RecordCount returns the size of the full ingested record set.
func (s *Session) RecordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns the full ingested record set.
func (s *Session) Records() []model.FlowRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.FlowRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Filtered returns the records surviving the active criteria.
func (s *Session) Filtered() []model.FlowRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.FlowRecord, len(s.filtered))
	copy(out, s.filtered)
	return out
}

// Topology returns the full topology built from every ingested record.
func (s *Session) Topology() *model.NetworkTopology {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topo
}

// FilteredTopology returns the reduced topology for the active criteria.
func (s *Session) FilteredTopology() *model.NetworkTopology {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filteredTopo
}

// Stats returns the statistics snapshot for the active criteria.
func (s *Session) Stats() *stats.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Search runs a query against the reduced topology.
func (s *Session) Search(q search.Query) []search.Result {
	s.mu.RLock()
	topo := s.filteredTopo
	s.mu.RUnlock()
	return search.Search(topo, q)
}

// Reset discards all records and derived state, keeping saved filters.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.builder = topology.NewBuilder()
	s.topo = &model.NetworkTopology{}
	s.recompute()
}

// SaveFilter persists the named criteria through the injected store.
func (s *Session) SaveFilter(name string, c model.FilterCriteria) error {
	if s.store == nil {
		return fmt.Errorf("no filter store configured")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode filter %q: %w", name, err)
	}
	return s.store.Put(savedFilterPrefix+name, data)
}

// SavedFilter loads a previously saved criteria by name.
func (s *Session) SavedFilter(name string) (model.FilterCriteria, error) {
	var c model.FilterCriteria
	if s.store == nil {
		return c, fmt.Errorf("no filter store configured")
	}
	data, err := s.store.Get(savedFilterPrefix + name)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to decode filter %q: %w", name, err)
	}
	return c, nil
}

// SavedFilters lists the names of all saved filters, sorted.
func (s *Session) SavedFilters() ([]string, error) {
	if s.store == nil {
		return nil, nil
	}
	keys, err := s.store.List()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, key := range keys {
		if strings.HasPrefix(key, savedFilterPrefix) {
			names = append(names, strings.TrimPrefix(key, savedFilterPrefix))
		}
	}
	sort.Strings(names)
	return names, nil
}

// DeleteSavedFilter removes a saved filter by name.
func (s *Session) DeleteSavedFilter(name string) error {
	if s.store == nil {
		return fmt.Errorf("no filter store configured")
	}
	return s.store.Delete(savedFilterPrefix + name)
}
