package topology

import (
	"testing"
	"time"

	"FlowScope/internal/model"
)

func flow(src, dst string, bytes uint64, action model.Action) model.FlowRecord {
	return model.FlowRecord{
		Timestamp: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		SrcAddr:   src,
		DstAddr:   dst,
		DstPort:   443,
		Protocol:  "TCP",
		Action:    action,
		Bytes:     bytes,
		Packets:   1,
	}
}

func TestBuild_NodesAndEdges(t *testing.T) {
	records := []model.FlowRecord{
		flow("10.0.1.10", "10.0.2.20", 1000, model.ActionAccept),
		flow("10.0.1.10", "10.0.2.20", 500, model.ActionReject),
		flow("10.0.2.20", "10.0.1.10", 200, model.ActionAccept),
		flow("10.0.1.10", "8.8.8.8", 100, model.ActionAccept),
	}

	topo := Build(records)

	if len(topo.Nodes) != 3 {
		t.Fatalf("Expected 3 nodes, got %d", len(topo.Nodes))
	}
	if len(topo.Edges) != 2 {
		t.Fatalf("Expected 2 edges, got %d", len(topo.Edges))
	}

	// The reverse-direction flow folds into the same edge as In traffic.
	edge := topo.Edges[0]
	if edge.Source != "10.0.1.10" || edge.Target != "10.0.2.20" {
		t.Fatalf("First edge has unexpected endpoints: %s -> %s", edge.Source, edge.Target)
	}
	if edge.Stats.BytesOut != 1500 || edge.Stats.BytesIn != 200 {
		t.Errorf("Edge traffic split wrong: out=%d in=%d", edge.Stats.BytesOut, edge.Stats.BytesIn)
	}
	if edge.Stats.Connections != 3 || edge.Stats.Accepted != 2 || edge.Stats.Rejected != 1 {
		t.Errorf("Edge counts wrong: %+v", edge.Stats)
	}
}

func TestBuild_NodeClassification(t *testing.T) {
	rec := flow("10.0.1.10", "8.8.8.8", 100, model.ActionAccept)
	rec.InstanceID = "i-0abc123"
	rec.VPCID = "vpc-00001"

	topo := Build([]model.FlowRecord{rec})

	src, ok := topo.Node("10.0.1.10")
	if !ok {
		t.Fatal("Source node missing from topology")
	}
	if src.Type != model.NodeTypeInstance {
		t.Errorf("Source with instance ID should be typed instance, got %s", src.Type)
	}
	if src.Name != "i-0abc123" || src.Properties["vpc_id"] != "vpc-00001" {
		t.Errorf("Resource identifiers not attached: %+v", src)
	}

	dst, ok := topo.Node("8.8.8.8")
	if !ok || dst.Type != model.NodeTypeExternal {
		t.Errorf("Public address should be typed external, got %+v", dst)
	}
}

func TestBuild_NodeByteTotals(t *testing.T) {
	records := []model.FlowRecord{
		flow("10.0.1.10", "10.0.2.20", 1000, model.ActionAccept),
		flow("10.0.1.10", "8.8.8.8", 100, model.ActionAccept),
	}

	topo := Build(records)
	n, ok := topo.Node("10.0.1.10")
	if !ok || n.Bytes != 1100 {
		t.Errorf("Node byte total should sum all touching flows, got %+v", n)
	}
}

func TestReduce_ActiveOnly(t *testing.T) {
	records := []model.FlowRecord{
		flow("10.0.1.10", "10.0.2.20", 1000, model.ActionAccept),
		flow("10.0.3.30", "8.8.8.8", 100, model.ActionAccept),
	}
	topo := Build(records)

	// Only the first flow survives filtering.
	surviving := records[:1]

	reduced := Reduce(topo, surviving, true)
	if len(reduced.Nodes) != 2 {
		t.Fatalf("Active-only reduce should keep 2 nodes, got %d", len(reduced.Nodes))
	}
	if len(reduced.Edges) != 1 {
		t.Fatalf("Active-only reduce should keep 1 edge, got %d", len(reduced.Edges))
	}

	// Without activeOnly, every node survives but inactive ones are marked.
	reduced = Reduce(topo, surviving, false)
	if len(reduced.Nodes) != 4 {
		t.Fatalf("Reduce should keep all 4 nodes, got %d", len(reduced.Nodes))
	}
	node := reduced.Nodes[0]
	if node.ID != "10.0.1.10" || !node.Active {
		t.Errorf("Surviving endpoint should be marked active: %+v", node)
	}
	for _, n := range reduced.Nodes {
		if n.ID == "10.0.3.30" && n.Active {
			t.Error("Node absent from surviving records should be marked inactive")
		}
	}
}

func TestReduce_EdgesRequireBothEndpoints(t *testing.T) {
	records := []model.FlowRecord{
		flow("10.0.1.10", "10.0.2.20", 1000, model.ActionAccept),
	}
	topo := Build(records)

	// A surviving record that names only one endpoint of the edge keeps
	// that node but drops the edge.
	partial := []model.FlowRecord{flow("10.0.1.10", "10.0.9.99", 50, model.ActionAccept)}
	reduced := Reduce(topo, partial, true)
	if len(reduced.Nodes) != 1 || reduced.Nodes[0].ID != "10.0.1.10" {
		t.Fatalf("Expected only 10.0.1.10 to survive, got %d nodes", len(reduced.Nodes))
	}
	if len(reduced.Edges) != 0 {
		t.Errorf("Edge with a dropped endpoint should not survive, got %d edges", len(reduced.Edges))
	}
}

func TestReduce_NilTopology(t *testing.T) {
	reduced := Reduce(nil, nil, true)
	if reduced == nil || len(reduced.Nodes) != 0 || len(reduced.Edges) != 0 {
		t.Errorf("Nil topology should reduce to an empty one, got %+v", reduced)
	}
}
