package model

import "time"

// Action is the accept/reject verdict recorded for a flow.
type Action string

const (
	ActionAccept Action = "ACCEPT"
	ActionReject Action = "REJECT"
)

// FlowRecord is one observed network flow. Records are immutable once
// ingested; every downstream view (filtering, topology, statistics) is
// derived from them without mutation.
type FlowRecord struct {
	Timestamp time.Time `json:"timestamp"`
	SrcAddr   string    `json:"src_addr"`
	DstAddr   string    `json:"dst_addr"`
	SrcPort   uint16    `json:"src_port"`
	DstPort   uint16    `json:"dst_port"`
	Protocol  string    `json:"protocol"`
	Action    Action    `json:"action"`
	Bytes     uint64    `json:"bytes"`
	Packets   uint64    `json:"packets"`

	// Optional resource identifiers attached by the flow-log source.
	AccountID  string `json:"account_id,omitempty"`
	VPCID      string `json:"vpc_id,omitempty"`
	SubnetID   string `json:"subnet_id,omitempty"`
	InstanceID string `json:"instance_id,omitempty"`
	Region     string `json:"region,omitempty"`
}

// ProtocolName maps an IP protocol number to the name used in flow records.
func ProtocolName(p uint8) string {
	switch p {
	case 1:
		return "ICMP"
	case 6:
		return "TCP"
	case 17:
		return "UDP"
	case 58:
		return "ICMPv6"
	default:
		return "OTHER"
	}
}
