package topology

import (
	"fmt"
	"net"
	"sort"

	"FlowScope/internal/model"
)

// Builder folds flow records into a NetworkTopology. Nodes are keyed by
// address, edges by the unordered address pair; traffic on an edge is
// attributed to the Out direction when it flows source→target of the
// edge's first-seen orientation and to In otherwise.
type Builder struct {
	nodes     map[string]*model.NetworkNode
	nodeOrder []string
	edges     map[string]*model.NetworkEdge
	edgeOrder []string
}

// NewBuilder creates an empty topology builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes: make(map[string]*model.NetworkNode),
		edges: make(map[string]*model.NetworkEdge),
	}
}

// Add folds a single record into the topology under construction.
func (b *Builder) Add(rec *model.FlowRecord) {
	src := b.node(rec.SrcAddr, rec)
	dst := b.node(rec.DstAddr, nil)

	src.Bytes += rec.Bytes
	src.Packets += rec.Packets
	src.Active = true
	dst.Bytes += rec.Bytes
	dst.Packets += rec.Packets
	dst.Active = true

	edge := b.edge(src.ID, dst.ID)
	if edge.Source == src.ID {
		edge.Stats.BytesOut += rec.Bytes
		edge.Stats.PacketsOut += rec.Packets
	} else {
		edge.Stats.BytesIn += rec.Bytes
		edge.Stats.PacketsIn += rec.Packets
	}
	edge.Stats.Connections++
	if rec.Action == model.ActionReject {
		edge.Stats.Rejected++
	} else {
		edge.Stats.Accepted++
	}
	edge.Protocols = appendUnique(edge.Protocols, rec.Protocol)
	edge.Ports = appendUniquePort(edge.Ports, rec.DstPort)
	edge.Active = true
}

// Build assembles the final topology in insertion order.
func (b *Builder) Build() *model.NetworkTopology {
	topo := &model.NetworkTopology{
		Nodes: make([]model.NetworkNode, 0, len(b.nodeOrder)),
		Edges: make([]model.NetworkEdge, 0, len(b.edgeOrder)),
	}
	for _, id := range b.nodeOrder {
		topo.Nodes = append(topo.Nodes, *b.nodes[id])
	}
	for _, id := range b.edgeOrder {
		edge := *b.edges[id]
		sort.Strings(edge.Protocols)
		sort.Slice(edge.Ports, func(i, j int) bool { return edge.Ports[i] < edge.Ports[j] })
		topo.Edges = append(topo.Edges, edge)
	}
	return topo
}

// Build is the one-shot form: fold a whole record set into a topology.
func Build(records []model.FlowRecord) *model.NetworkTopology {
	b := NewBuilder()
	for i := range records {
		b.Add(&records[i])
	}
	return b.Build()
}

// node returns the node for an address, creating it on first sight. The
// record that first reports resource identifiers for the address wins;
// flow logs attach them to the capturing side, so they arrive with the
// source endpoint.
func (b *Builder) node(addr string, rec *model.FlowRecord) *model.NetworkNode {
	if n, ok := b.nodes[addr]; ok {
		if rec != nil && n.Type == model.NodeTypeExternal && rec.InstanceID != "" {
			b.attachResource(n, rec)
		}
		return n
	}

	n := &model.NetworkNode{
		ID:    addr,
		Label: addr,
		IPs:   []string{addr},
		Type:  classify(addr),
	}
	if rec != nil && rec.InstanceID != "" {
		b.attachResource(n, rec)
	}
	b.nodes[addr] = n
	b.nodeOrder = append(b.nodeOrder, addr)
	return n
}

func (b *Builder) attachResource(n *model.NetworkNode, rec *model.FlowRecord) {
	n.Type = model.NodeTypeInstance
	n.Name = rec.InstanceID
	n.Label = fmt.Sprintf("%s (%s)", rec.InstanceID, n.IPs[0])
	if n.Properties == nil {
		n.Properties = make(map[string]string)
	}
	setIfPresent(n.Properties, "account_id", rec.AccountID)
	setIfPresent(n.Properties, "vpc_id", rec.VPCID)
	setIfPresent(n.Properties, "subnet_id", rec.SubnetID)
	setIfPresent(n.Properties, "region", rec.Region)
}

func (b *Builder) edge(srcID, dstID string) *model.NetworkEdge {
	key := srcID + "|" + dstID
	if dstID < srcID {
		key = dstID + "|" + srcID
	}
	if e, ok := b.edges[key]; ok {
		return e
	}
	e := &model.NetworkEdge{
		ID:     fmt.Sprintf("%s->%s", srcID, dstID),
		Source: srcID,
		Target: dstID,
	}
	b.edges[key] = e
	b.edgeOrder = append(b.edgeOrder, key)
	return e
}

// classify types an address as in-VPC or external by private-range
// membership. Nodes are retyped to instance when a record attaches
// resource identifiers.
func classify(addr string) model.NodeType {
	ip := net.ParseIP(addr)
	if ip != nil && ip.IsPrivate() {
		return model.NodeTypeVPC
	}
	return model.NodeTypeExternal
}

func setIfPresent(props map[string]string, key, val string) {
	if val != "" {
		props[key] = val
	}
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}

func appendUniquePort(list []uint16, v uint16) []uint16 {
	for _, p := range list {
		if p == v {
			return list
		}
	}
	return append(list, v)
}
