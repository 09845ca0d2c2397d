package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// PortFilter matches a port either exactly or against an inclusive range.
// Exactly one of Exact and Range is set; the ambiguity of the legacy wire
// shape (a bare number or an object) is resolved once when the filter is
// decoded, never at match time.
type PortFilter struct {
	Exact *uint16    `json:"exact,omitempty"`
	Range *PortRange `json:"range,omitempty"`

	// Include inverts the predicate when false: a record matches only if
	// its ports fall outside the filter.
	Include bool `json:"include"`
}

// PortRange is an inclusive port interval.
type PortRange struct {
	From uint16 `json:"from"`
	To   uint16 `json:"to"`
}

// UnmarshalJSON accepts either the structured form or a legacy bare number,
// normalizing both into the tagged variant.
func (p *PortFilter) UnmarshalJSON(data []byte) error {
	var port uint16
	if err := json.Unmarshal(data, &port); err == nil {
		p.Exact = &port
		p.Range = nil
		p.Include = true
		return nil
	}

	type portFilter PortFilter
	var pf portFilter
	if err := json.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("invalid port filter: %w", err)
	}
	*p = PortFilter(pf)
	return nil
}

// Contains reports whether the filter's port set contains the given port,
// ignoring the Include flag.
func (p *PortFilter) Contains(port uint16) bool {
	if p.Exact != nil {
		return port == *p.Exact
	}
	if p.Range != nil {
		return port >= p.Range.From && port <= p.Range.To
	}
	return false
}

// CIDRRule includes or excludes addresses inside a CIDR block.
type CIDRRule struct {
	CIDR    string `json:"cidr"`
	Include bool   `json:"include"`
}

// TimeRange is an inclusive timestamp window.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, bounds included.
func (r *TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// FilterCriteria is a set of optional predicates over flow records. All
// defined fields are AND-combined; a nil or empty field imposes no
// constraint. Criteria are replaced wholesale on each update, never
// mutated in place.
type FilterCriteria struct {
	// Exact address matching. Addrs matches either endpoint.
	SrcAddrs []string `json:"src_addrs,omitempty"`
	DstAddrs []string `json:"dst_addrs,omitempty"`
	Addrs    []string `json:"addrs,omitempty"`

	CIDRRules []CIDRRule   `json:"cidr_rules,omitempty"`
	Ports     []PortFilter `json:"ports,omitempty"`
	Protocols []string     `json:"protocols,omitempty"`
	Actions   []Action     `json:"actions,omitempty"`
	TimeRange *TimeRange   `json:"time_range,omitempty"`

	AccountIDs  []string `json:"account_ids,omitempty"`
	VPCIDs      []string `json:"vpc_ids,omitempty"`
	SubnetIDs   []string `json:"subnet_ids,omitempty"`
	InstanceIDs []string `json:"instance_ids,omitempty"`
	Regions     []string `json:"regions,omitempty"`

	MinBytes   *uint64 `json:"min_bytes,omitempty"`
	MaxBytes   *uint64 `json:"max_bytes,omitempty"`
	MinPackets *uint64 `json:"min_packets,omitempty"`
	MaxPackets *uint64 `json:"max_packets,omitempty"`

	// ActiveOnly restricts the reduced topology to nodes with surviving
	// traffic. It does not affect record filtering itself.
	ActiveOnly bool `json:"active_only,omitempty"`
}

// IsEmpty reports whether the criteria impose no constraint at all.
func (c *FilterCriteria) IsEmpty() bool {
	return len(c.SrcAddrs) == 0 && len(c.DstAddrs) == 0 && len(c.Addrs) == 0 &&
		len(c.CIDRRules) == 0 && len(c.Ports) == 0 && len(c.Protocols) == 0 &&
		len(c.Actions) == 0 && c.TimeRange == nil &&
		len(c.AccountIDs) == 0 && len(c.VPCIDs) == 0 && len(c.SubnetIDs) == 0 &&
		len(c.InstanceIDs) == 0 && len(c.Regions) == 0 &&
		c.MinBytes == nil && c.MaxBytes == nil &&
		c.MinPackets == nil && c.MaxPackets == nil
}
