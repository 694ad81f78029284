// Package poller implements the agent's probe-fetch-send cycle against
// the sensor device and the collector's ingest endpoint.
package poller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sensorlab/doorwatch/logger"
	"github.com/sensorlab/doorwatch/util/common"
)

// Config carries the addresses and the bounded timeouts of one cycle.
// The worst-case cycle latency is the sum of the three timeouts; nothing
// in a cycle blocks longer.
type Config struct {
	DeviceAddr   string // host:port of the sensor device
	IngestURL    string // collector ingest endpoint
	ProbeTimeout time.Duration
	FetchTimeout time.Duration
}

// Poller runs one cycle per Run call. It implements cron.Job so the
// scheduler drives it on a fixed interval; the mutex keeps cycles from
// ever overlapping when one runs long.
type Poller struct {
	cfg    Config
	client *http.Client

	mu sync.Mutex
}

func New(cfg Config) *Poller {
	return &Poller{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout},
	}
}

// Run executes a single probe-fetch-send cycle. Every failure ends the
// cycle where it happened and is only logged: the next tick proceeds
// regardless, and no partial payload is ever forwarded.
func (p *Poller) Run() {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer common.Recover("poll cycle")

	if !p.probe() {
		logger.Infof("%s not reachable", p.cfg.DeviceAddr)
		return
	}

	payload, err := p.fetch()
	if err != nil {
		logger.Warning("fetch device status err:", err)
		return
	}

	if err := p.send(payload); err != nil {
		logger.Warning("send to collector err:", err)
	}
}

// probe checks reachability with a short TCP dial to the device port.
func (p *Poller) probe() bool {
	conn, err := net.DialTimeout("tcp", p.cfg.DeviceAddr, p.cfg.ProbeTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// fetch retrieves the device status document and verifies it is a
// non-empty JSON object before it may be forwarded.
func (p *Poller) fetch() ([]byte, error) {
	url := fmt.Sprintf("http://%s/status", p.cfg.DeviceAddr)
	resp, err := p.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("device returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("device returned malformed body: %w", err)
	}
	if len(probe) == 0 {
		return nil, fmt.Errorf("device returned empty status")
	}
	return body, nil
}

// send forwards the fetched payload to the collector as-is.
func (p *Poller) send(payload []byte) error {
	resp, err := p.client.Post(p.cfg.IngestURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("collector returned status %d", resp.StatusCode)
	}
	return nil
}
