package model

// NodeType classifies a topology node by the resource it represents.
type NodeType string

const (
	NodeTypeInstance NodeType = "instance"
	NodeTypeSubnet   NodeType = "subnet"
	NodeTypeVPC      NodeType = "vpc"
	NodeTypeExternal NodeType = "external"
)

// NetworkNode is a resource in the topology graph. A node may carry more
// than one address (e.g. a subnet node owns its observed member IPs).
type NetworkNode struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Type  NodeType `json:"type"`
	Name  string   `json:"name,omitempty"`
	IPs   []string `json:"ips"`
	CIDR  string   `json:"cidr,omitempty"`

	// Resource attributes (vpc id, subnet id, region, ...).
	Properties map[string]string `json:"properties,omitempty"`

	// Traffic metadata accumulated by the topology builder.
	Bytes   uint64 `json:"bytes"`
	Packets uint64 `json:"packets"`
	Active  bool   `json:"active"`
}

// TrafficStats are direction-aware aggregates carried by an edge. Out is
// traffic flowing source→target of the edge, In is the reverse direction.
type TrafficStats struct {
	BytesOut    uint64 `json:"bytes_out"`
	BytesIn     uint64 `json:"bytes_in"`
	PacketsOut  uint64 `json:"packets_out"`
	PacketsIn   uint64 `json:"packets_in"`
	Connections uint64 `json:"connections"`
	Accepted    uint64 `json:"accepted"`
	Rejected    uint64 `json:"rejected"`
}

// NetworkEdge is a traffic-carrying link between two nodes.
type NetworkEdge struct {
	ID        string       `json:"id"`
	Source    string       `json:"source"`
	Target    string       `json:"target"`
	Protocols []string     `json:"protocols"`
	Ports     []uint16     `json:"ports"`
	Stats     TrafficStats `json:"stats"`
	Active    bool         `json:"active"`
}

// NetworkTopology is the graph derived from a record set. Nodes and edges
// are stored in insertion order for deterministic output.
type NetworkTopology struct {
	Nodes []NetworkNode `json:"nodes"`
	Edges []NetworkEdge `json:"edges"`
}

// Node returns the node with the given ID, if present.
func (t *NetworkTopology) Node(id string) (*NetworkNode, bool) {
	for i := range t.Nodes {
		if t.Nodes[i].ID == id {
			return &t.Nodes[i], true
		}
	}
	return nil, false
}
