package topology

import (
	"FlowScope/internal/model"
)

// Reduce derives the filtered subgraph of a topology from the records that
// survived filtering. When activeOnly is set, only nodes with at least one
// address appearing as an endpoint of a surviving record are kept;
// otherwise all nodes survive. Edges are kept only when both endpoint
// nodes survived. Pure and deterministic: the input topology is not
// modified.
func Reduce(topo *model.NetworkTopology, records []model.FlowRecord, activeOnly bool) *model.NetworkTopology {
	if topo == nil {
		return &model.NetworkTopology{}
	}

	active := make(map[string]struct{}, len(records)*2)
	for i := range records {
		active[records[i].SrcAddr] = struct{}{}
		active[records[i].DstAddr] = struct{}{}
	}

	out := &model.NetworkTopology{}
	kept := make(map[string]struct{}, len(topo.Nodes))

	for i := range topo.Nodes {
		node := topo.Nodes[i]
		isActive := nodeActive(&node, active)
		if activeOnly && !isActive {
			continue
		}
		node.Active = isActive
		out.Nodes = append(out.Nodes, node)
		kept[node.ID] = struct{}{}
	}

	for i := range topo.Edges {
		edge := topo.Edges[i]
		if _, ok := kept[edge.Source]; !ok {
			continue
		}
		if _, ok := kept[edge.Target]; !ok {
			continue
		}
		out.Edges = append(out.Edges, edge)
	}
	return out
}

func nodeActive(node *model.NetworkNode, active map[string]struct{}) bool {
	for _, ip := range node.IPs {
		if _, ok := active[ip]; ok {
			return true
		}
	}
	return false
}
