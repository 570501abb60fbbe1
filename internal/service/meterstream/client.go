package meterstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"GridCast/internal/domain/models"
	drepo "GridCast/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a MeterStream backed by the metering gateway's
// WebSocket feed.
type Client struct {
	apiKey         string
	gatewayURL     string
	devices        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new gateway MeterStream.
func New(apiKey, gatewayURL string, devices []string, reconnectDelay, pingInterval time.Duration) drepo.MeterStream {
	return &Client{
		apiKey:         apiKey,
		gatewayURL:     gatewayURL,
		devices:        devices,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.gatewayURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("gateway connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("gateway: connected")
	return nil
}

// Subscribe subscribes to configured devices.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("gateway not connected")
	}
	for _, d := range c.devices {
		msg := map[string]string{"type": "subscribe", "device": d}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", d, err)
		}
		log.Printf("gateway: subscribed %s", d)
	}
	return nil
}

type gwSample struct {
	Device string  `json:"device"`
	TS     int64   `json:"ts"` // ms
	I2     float64 `json:"phase2_current"`
	V2     float64 `json:"phase2_voltage"`
	F3     float64 `json:"phase3_frequency"`
	PF3    float64 `json:"phase3_pf"`
	P3     float64 `json:"phase3_power"`
	V3     float64 `json:"phase3_voltage"`
}

type gwMessage struct {
	Type string     `json:"type"`
	Data []gwSample `json:"data"`
}

// Read streams Reading events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.Reading, <-chan error) {
	readings := make(chan *models.Reading, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(readings)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("gateway conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("gateway read: %w", err)
					return
				}
				var m gwMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-telemetry frames
					continue
				}
				if m.Type != "telemetry" {
					continue
				}
				for _, d := range m.Data {
					r := &models.Reading{
						Meter:           d.Device,
						Timestamp:       time.UnixMilli(d.TS).UTC(),
						Phase2Current:   d.I2,
						Phase2Voltage:   d.V2,
						Phase3Frequency: d.F3,
						Phase3PF:        d.PF3,
						Phase3Power:     d.P3,
						Phase3Voltage:   d.V3,
					}
					select {
					case readings <- r:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return readings, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
