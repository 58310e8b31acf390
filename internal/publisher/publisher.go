package publisher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jgoulah/pumplog/internal/config"
	"github.com/jgoulah/pumplog/pkg/models"
)

// Publisher sends daily totals to Home Assistant and, optionally, MQTT
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	haConfig    config.HAConfig
	http        *http.Client
}

// New creates a new publisher (supports both MQTT and HA HTTP API)
func New(mqttCfg config.MQTTConfig, haCfg config.HAConfig) (*Publisher, error) {
	// Validate HA config if enabled
	if haCfg.Enabled {
		if haCfg.URL == "" {
			return nil, fmt.Errorf("Home Assistant URL is required when enabled")
		}
		if haCfg.Token == "" {
			return nil, fmt.Errorf("Home Assistant token is required when enabled")
		}
		if haCfg.EntityID == "" {
			return nil, fmt.Errorf("Home Assistant entity_id is required when enabled")
		}
	}

	if !haCfg.Enabled && !mqttCfg.Enabled {
		return nil, fmt.Errorf("neither home_assistant nor mqtt publishing is enabled in config")
	}

	p := &Publisher{
		haConfig: haCfg,
		http:     &http.Client{Timeout: 10 * time.Second},
	}

	if mqttCfg.Enabled {
		if mqttCfg.Broker == "" {
			return nil, fmt.Errorf("MQTT broker address is required when enabled")
		}
		p.topicPrefix = mqttCfg.GetTopicPrefix()

		opts := mqtt.NewClientOptions()
		opts.AddBroker(brokerURL(mqttCfg.Broker))
		opts.SetClientID("pumplog")
		opts.SetAutoReconnect(true)
		opts.SetConnectTimeout(10 * time.Second)

		if mqttCfg.Username != "" {
			opts.SetUsername(mqttCfg.Username)
		}
		if mqttCfg.Password != "" {
			opts.SetPassword(mqttCfg.Password)
		}

		client := mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
		}
		p.client = client
	}

	return p, nil
}

// brokerURL accepts host:port or a full tcp://, ssl:// or ws:// URL
func brokerURL(broker string) string {
	if strings.Contains(broker, "://") {
		return broker
	}
	return "tcp://" + broker
}

// HAPayload matches the Home Assistant backfill service call data
type HAPayload struct {
	EntityID    string `json:"entity_id"`
	State       string `json:"state"`
	LastChanged string `json:"last_changed"`
	LastUpdated string `json:"last_updated"`
}

// DailyMessage is the retained MQTT payload for one day
type DailyMessage struct {
	Date        string `json:"date"`
	TotalML     int    `json:"total_ml"`
	MorningML   int    `json:"morning_ml"`
	AfternoonML int    `json:"afternoon_ml"`
}

// Publish sends one day's totals to every enabled sink. Days whose total is
// not a number are rejected rather than published.
func (p *Publisher) Publish(day models.DaySummary) error {
	if !day.Total.Valid {
		return fmt.Errorf("total for %s is not a number", day.Date.Format("2006-01-02"))
	}

	if p.haConfig.Enabled {
		if err := p.publishHA(day); err != nil {
			return err
		}
	}
	if p.client != nil {
		if err := p.publishMQTT(day); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publishHA(day models.DaySummary) error {
	// Build the full API URL (AppDaemon API endpoint)
	apiURL := strings.TrimRight(p.haConfig.URL, "/") + "/api/appdaemon/backfill_state"
	timestamp := day.Date.Format(time.RFC3339)

	payload := HAPayload{
		EntityID:    p.haConfig.EntityID,
		State:       strconv.Itoa(day.Total.ML),
		LastChanged: timestamp,
		LastUpdated: timestamp,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.haConfig.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read error response body for debugging
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Topic returns the MQTT topic for a day
func (p *Publisher) Topic(day models.DaySummary) string {
	return fmt.Sprintf("%s/daily/%s", p.topicPrefix, day.Date.Format("2006-01-02"))
}

func (p *Publisher) publishMQTT(day models.DaySummary) error {
	body, err := json.Marshal(dailyMessage(day))
	if err != nil {
		return fmt.Errorf("encoding mqtt message: %w", err)
	}

	token := p.client.Publish(p.Topic(day), 1, true, body)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("publishing to %s: timed out", p.Topic(day))
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.Topic(day), err)
	}
	return nil
}

func dailyMessage(day models.DaySummary) DailyMessage {
	return DailyMessage{
		Date:        day.Date.Format("2006-01-02"),
		TotalML:     day.Total.ML,
		MorningML:   day.Morning.ML,
		AfternoonML: day.Afternoon.ML,
	}
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
