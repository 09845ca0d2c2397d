package filter

import (
	"fmt"
	"net"

	"FlowScope/internal/model"
)

// cidrMatcher holds the parsed form of a rule set so each record match
// avoids re-parsing CIDR strings. Malformed rules are dropped at parse
// time and never match, mirroring the permissive policy of the flow-log
// sources that produce these rules.
type cidrMatcher struct {
	include []*net.IPNet
	exclude []*net.IPNet

	// brokenInclude is set when an include rule failed to parse. Such a
	// rule still constrains the record set (it matches nothing), whereas
	// a malformed exclude rule simply excludes nothing.
	brokenInclude bool
}

func newCIDRMatcher(rules []model.CIDRRule) *cidrMatcher {
	m := &cidrMatcher{}
	for _, rule := range rules {
		_, ipnet, err := net.ParseCIDR(rule.CIDR)
		if err != nil {
			if rule.Include {
				m.brokenInclude = true
			}
			continue
		}
		if rule.Include {
			m.include = append(m.include, ipnet)
		} else {
			m.exclude = append(m.exclude, ipnet)
		}
	}
	return m
}

func (m *cidrMatcher) empty() bool {
	return len(m.include) == 0 && len(m.exclude) == 0 && !m.brokenInclude
}

// match reports whether either endpoint of the record satisfies the rule
// set: inside at least one include block (when any exist) and outside
// every exclude block.
func (m *cidrMatcher) match(rec *model.FlowRecord) bool {
	src := net.ParseIP(rec.SrcAddr)
	dst := net.ParseIP(rec.DstAddr)

	for _, ipnet := range m.exclude {
		if containsIP(ipnet, src) || containsIP(ipnet, dst) {
			return false
		}
	}
	if len(m.include) == 0 {
		return !m.brokenInclude
	}
	for _, ipnet := range m.include {
		if containsIP(ipnet, src) || containsIP(ipnet, dst) {
			return true
		}
	}
	return false
}

func containsIP(ipnet *net.IPNet, ip net.IP) bool {
	return ip != nil && ipnet.Contains(ip)
}

// ValidateCriteria reports the malformed pieces of a criteria object that
// the matcher would otherwise skip silently: unparsable CIDR strings and
// inverted port ranges. Callers that want strict input handling check this
// before applying; Apply itself stays permissive.
func ValidateCriteria(c *model.FilterCriteria) error {
	for _, rule := range c.CIDRRules {
		if _, _, err := net.ParseCIDR(rule.CIDR); err != nil {
			return fmt.Errorf("invalid CIDR %q: %w", rule.CIDR, err)
		}
	}
	for _, pf := range c.Ports {
		if pf.Exact == nil && pf.Range == nil {
			return fmt.Errorf("port filter defines neither exact port nor range")
		}
		if pf.Range != nil && pf.Range.From > pf.Range.To {
			return fmt.Errorf("invalid port range %d-%d", pf.Range.From, pf.Range.To)
		}
	}
	if c.TimeRange != nil && c.TimeRange.End.Before(c.TimeRange.Start) {
		return fmt.Errorf("time range ends before it starts")
	}
	return nil
}
