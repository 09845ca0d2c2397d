package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"FlowScope/internal/config"
	"FlowScope/internal/ingest"
	"FlowScope/internal/model"
	flowpcap "FlowScope/pkg/pcap"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

const (
	snapshotLen int32 = 1600
	promiscuous       = true
	timeout           = pcap.BlockForever
)

func main() {
	mode := flag.String("mode", "sub", "Operating mode: 'pub' to capture and publish, 'sub' to subscribe and print.")
	iface := flag.String("iface", "", "Interface to capture packets from (required for pub mode).")
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	switch *mode {
	case "pub":
		runProbe(cfg.Ingest, *iface)
	case "sub":
		runSubscriber(cfg.Ingest)
	default:
		fmt.Fprintf(os.Stderr, "Invalid mode: %s\n", *mode)
		flag.Usage()
		os.Exit(1)
	}
}

// runProbe captures packets on an interface, converts them to flow
// records and publishes them to NATS.
func runProbe(cfg config.IngestConfig, interfaceName string) {
	if interfaceName == "" {
		log.Println("Error: -iface flag is required for probe mode.")
		flag.Usage()
		os.Exit(1)
	}
	log.Printf("Starting fs-probe in PROBE mode on interface: %s", interfaceName)

	pub, err := ingest.NewPublisher(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer pub.Close()

	handle, err := pcap.OpenLive(interfaceName, snapshotLen, promiscuous, timeout)
	if err != nil {
		log.Fatalf("Error opening device %s: %v", interfaceName, err)
	}
	defer handle.Close()

	log.Println("Capture started successfully. Publishing flow records to NATS...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		packetSource := gopacket.NewPacketSource(handle, handle.LinkType())
		published := 0
		for packet := range packetSource.Packets() {
			rec, err := flowpcap.RecordFromPacket(packet)
			if err != nil {
				continue // Skip non-IP packets
			}
			if err := pub.Publish(&rec); err != nil {
				log.Printf("Failed to publish record: %v", err)
			}
			published++
			if published%1000 == 0 {
				log.Printf("%d records published...", published)
			}
		}
	}()

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
}

// runSubscriber subscribes to the record stream and prints each record.
func runSubscriber(cfg config.IngestConfig) {
	log.Println("Starting fs-probe in SUBSCRIBER mode...")

	sub, err := ingest.NewSubscriber(cfg)
	if err != nil {
		log.Fatalf("Failed to create subscriber: %v", err)
	}
	defer sub.Close()

	handler := func(rec model.FlowRecord) {
		log.Printf("Received Record: %+v", rec)
	}

	if err := sub.Start(handler); err != nil {
		log.Fatalf("Subscriber failed to start: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
}
