package filter

import (
	"FlowScope/internal/model"
)

// Apply returns the subset of records matching every defined criterion.
// The input slice is never mutated and the result is always a subset of
// it; empty criteria return the input records unchanged. Malformed CIDR
// rules are skipped rather than raised (see ValidateCriteria).
func Apply(records []model.FlowRecord, c *model.FilterCriteria) []model.FlowRecord {
	if c == nil || c.IsEmpty() {
		return records
	}

	cidrs := newCIDRMatcher(c.CIDRRules)

	out := make([]model.FlowRecord, 0, len(records))
	for i := range records {
		if matches(&records[i], c, cidrs) {
			out = append(out, records[i])
		}
	}
	return out
}

func matches(rec *model.FlowRecord, c *model.FilterCriteria, cidrs *cidrMatcher) bool {
	if len(c.SrcAddrs) > 0 && !containsString(c.SrcAddrs, rec.SrcAddr) {
		return false
	}
	if len(c.DstAddrs) > 0 && !containsString(c.DstAddrs, rec.DstAddr) {
		return false
	}
	if len(c.Addrs) > 0 && !containsString(c.Addrs, rec.SrcAddr) && !containsString(c.Addrs, rec.DstAddr) {
		return false
	}
	if !cidrs.empty() && !cidrs.match(rec) {
		return false
	}
	if len(c.Ports) > 0 && !matchPorts(rec, c.Ports) {
		return false
	}
	if len(c.Protocols) > 0 && !containsString(c.Protocols, rec.Protocol) {
		return false
	}
	if len(c.Actions) > 0 && !containsAction(c.Actions, rec.Action) {
		return false
	}
	if c.TimeRange != nil && !c.TimeRange.Contains(rec.Timestamp) {
		return false
	}
	if len(c.AccountIDs) > 0 && !containsString(c.AccountIDs, rec.AccountID) {
		return false
	}
	if len(c.VPCIDs) > 0 && !containsString(c.VPCIDs, rec.VPCID) {
		return false
	}
	if len(c.SubnetIDs) > 0 && !containsString(c.SubnetIDs, rec.SubnetID) {
		return false
	}
	if len(c.InstanceIDs) > 0 && !containsString(c.InstanceIDs, rec.InstanceID) {
		return false
	}
	if len(c.Regions) > 0 && !containsString(c.Regions, rec.Region) {
		return false
	}
	if c.MinBytes != nil && rec.Bytes < *c.MinBytes {
		return false
	}
	if c.MaxBytes != nil && rec.Bytes > *c.MaxBytes {
		return false
	}
	if c.MinPackets != nil && rec.Packets < *c.MinPackets {
		return false
	}
	if c.MaxPackets != nil && rec.Packets > *c.MaxPackets {
		return false
	}
	return true
}

// matchPorts applies the port filter list: a record passes if some
// include filter contains either of its ports (when include filters
// exist) and no exclude filter does.
func matchPorts(rec *model.FlowRecord, filters []model.PortFilter) bool {
	hasInclude := false
	included := false
	for i := range filters {
		pf := &filters[i]
		hit := pf.Contains(rec.SrcPort) || pf.Contains(rec.DstPort)
		if pf.Include {
			hasInclude = true
			if hit {
				included = true
			}
		} else if hit {
			return false
		}
	}
	return !hasInclude || included
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsAction(list []model.Action, v model.Action) bool {
	for _, a := range list {
		if a == v {
			return true
		}
	}
	return false
}
