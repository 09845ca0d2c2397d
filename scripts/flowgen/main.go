package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"FlowScope/internal/config"
	"FlowScope/internal/ingest"
	"FlowScope/internal/model"
)

// flowgen publishes synthetic flow records to NATS for exercising the
// ingest pipeline without a live capture source.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file")
	count := flag.Int("c", 10000, "Number of records to generate")
	rejectRate := flag.Float64("reject", 0.1, "Fraction of records with a REJECT action")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pub, err := ingest.NewPublisher(cfg.Ingest)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer pub.Close()

	protocols := []string{"TCP", "TCP", "TCP", "UDP", "ICMP"}
	ports := []uint16{22, 53, 80, 443, 3306, 8080}
	regions := []string{"us-east-1", "eu-west-1", "ap-southeast-2"}

	log.Printf("Publishing %d synthetic flow records...", *count)
	for i := 0; i < *count; i++ {
		rec := model.FlowRecord{
			Timestamp: time.Now().Add(-time.Duration(rand.Intn(3600)) * time.Second),
			SrcAddr:   fmt.Sprintf("10.0.%d.%d", rand.Intn(4), rand.Intn(250)+1),
			DstAddr:   fmt.Sprintf("172.16.%d.%d", rand.Intn(4), rand.Intn(250)+1),
			SrcPort:   uint16(rand.Intn(64511) + 1024),
			DstPort:   ports[rand.Intn(len(ports))],
			Protocol:  protocols[rand.Intn(len(protocols))],
			Action:    model.ActionAccept,
			Bytes:     uint64(rand.Intn(65536) + 64),
			Packets:   uint64(rand.Intn(128) + 1),
			AccountID: "123456789012",
			VPCID:     fmt.Sprintf("vpc-%05d", rand.Intn(3)),
			Region:    regions[rand.Intn(len(regions))],
		}
		if rand.Float64() < *rejectRate {
			rec.Action = model.ActionReject
		}

		if err := pub.Publish(&rec); err != nil {
			log.Fatalf("Failed to publish record: %v", err)
		}
		if (i+1)%1000 == 0 {
			log.Printf("%d records published...", i+1)
		}
	}
	log.Println("Done.")
}
