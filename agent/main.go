// Command agent polls the sensor device and forwards its status to the
// collector. One cycle runs immediately at startup, then one per tick of
// the poll interval until the process is terminated.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/robfig/cron/v3"

	"github.com/sensorlab/doorwatch/agent/config"
	"github.com/sensorlab/doorwatch/agent/poller"
	"github.com/sensorlab/doorwatch/logger"
)

func main() {
	_ = godotenv.Load()

	var deviceAddr, ingestURL string
	var interval time.Duration
	flag.StringVar(&deviceAddr, "device", config.GetDeviceAddr(), "Sensor device address (host:port)")
	flag.StringVar(&ingestURL, "ingest", config.GetIngestURL(), "Collector ingest endpoint URL")
	flag.DurationVar(&interval, "interval", config.GetPollInterval(), "Poll interval")
	flag.Parse()

	logger.InitLogger(logging.INFO)

	log.Printf("Agent polling %s every %s, forwarding to %s", deviceAddr, interval, ingestURL)

	p := poller.New(poller.Config{
		DeviceAddr:   deviceAddr,
		IngestURL:    ingestURL,
		ProbeTimeout: config.GetProbeTimeout(),
		FetchTimeout: config.GetFetchTimeout(),
	})

	c := cron.New()
	if _, err := c.AddJob(fmt.Sprintf("@every %s", interval), p); err != nil {
		log.Fatalf("Failed to schedule poll cycle: %v", err)
	}
	c.Start()

	// First cycle right away instead of waiting out the first tick.
	go p.Run()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	<-c.Stop().Done()
	logger.CloseLogger()
}
