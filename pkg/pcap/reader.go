package pcap

import (
	"fmt"
	"log"
	"time"

	"FlowScope/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// Reader reads packets from a pcap file and converts them to flow
// records, one record per observed packet.
type Reader struct {
	handle *pcap.Handle
}

// NewReader creates a new pcap reader for the given file path.
func NewReader(filePath string) (*Reader, error) {
	handle, err := pcap.OpenOffline(filePath)
	if err != nil {
		return nil, err
	}
	return &Reader{handle: handle}, nil
}

// Close closes the pcap handle.
func (r *Reader) Close() {
	r.handle.Close()
}

// ReadRecords reads all packets from the pcap file and sends the derived
// flow records to the provided channel. Packets that cannot be parsed are
// logged and skipped. The channel is not closed; that is the caller's
// responsibility.
func (r *Reader) ReadRecords(out chan<- model.FlowRecord) {
	packetSource := gopacket.NewPacketSource(r.handle, r.handle.LinkType())
	for packet := range packetSource.Packets() {
		rec, err := RecordFromPacket(packet)
		if err != nil {
			log.Printf("Error parsing packet: %v", err)
			continue
		}
		out <- rec
	}
}

// RecordFromPacket decodes a captured packet into a flow record. Only
// IPv4 TCP/UDP packets are supported; anything else returns an error.
func RecordFromPacket(packet gopacket.Packet) (model.FlowRecord, error) {
	rec := model.FlowRecord{
		Timestamp: time.Now(),
		Action:    model.ActionAccept,
		Bytes:     uint64(len(packet.Data())),
		Packets:   1,
	}
	if meta := packet.Metadata(); meta != nil && !meta.Timestamp.IsZero() {
		rec.Timestamp = meta.Timestamp
	}

	l := packet.Layer(layers.LayerTypeIPv4)
	if l == nil {
		return rec, fmt.Errorf("not an IPv4 packet")
	}
	ipLayer := l.(*layers.IPv4)
	rec.SrcAddr = ipLayer.SrcIP.String()
	rec.DstAddr = ipLayer.DstIP.String()
	rec.Protocol = model.ProtocolName(uint8(ipLayer.Protocol))

	if l := packet.Layer(layers.LayerTypeTCP); l != nil {
		tcpLayer := l.(*layers.TCP)
		rec.SrcPort = uint16(tcpLayer.SrcPort)
		rec.DstPort = uint16(tcpLayer.DstPort)
	} else if l := packet.Layer(layers.LayerTypeUDP); l != nil {
		udpLayer := l.(*layers.UDP)
		rec.SrcPort = uint16(udpLayer.SrcPort)
		rec.DstPort = uint16(udpLayer.DstPort)
	} else {
		return rec, fmt.Errorf("not a TCP or UDP packet")
	}

	return rec, nil
}
