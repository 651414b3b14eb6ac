// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/relabs-tech/movement_detection/internal/motion"
)

// Request/response channel methods.
const (
	MethodIsAvailable      = "isAccelerometerAvailable"
	MethodStart            = "startMovementDetection"
	MethodStop             = "stopMovementDetection"
	MethodMovementDetected = "onMovementDetected"
)

// ErrNotImplemented is reported for unknown request methods.
var ErrNotImplemented = errors.New("notImplemented")

// Request is a call on the request/response channel.
type Request struct {
	ID     string `json:"id"`
	Method string `json:"method"`
}

// NewRequest creates a request with a fresh ID.
func NewRequest(method string) Request {
	return Request{ID: uuid.NewString(), Method: method}
}

// Response answers a Request with the same ID.
type Response struct {
	ID     string `json:"id"`
	Result any    `json:"result"`
	Error  string `json:"error,omitempty"`
}

// Event is an asynchronous call from the bridge to the application.
type Event struct {
	Method string `json:"method"`
	Args   any    `json:"args"`
}

// Controller is the session control surface exposed on the channel.
type Controller interface {
	IsSourceAvailable() bool
	Start() error
	Stop()
}

// HandleRequest dispatches req to ctrl.
func HandleRequest(ctrl Controller, req Request) Response {
	resp := Response{ID: req.ID}
	switch req.Method {
	case MethodIsAvailable:
		resp.Result = ctrl.IsSourceAvailable()
	case MethodStart:
		if err := ctrl.Start(); err != nil {
			resp.Error = err.Error()
		}
	case MethodStop:
		ctrl.Stop()
	default:
		resp.Error = ErrNotImplemented.Error()
	}
	return resp
}

// Topics are the MQTT topics of the bridge.
type Topics struct {
	Request  string
	Response string
	Notify   string
	Stream   string
}

// MQTTChannel carries the request/response channel over MQTT. It also
// publishes movement notifications and mirrors the status stream.
type MQTTChannel struct {
	client mqtt.Client
	topics Topics
	logger *slog.Logger
}

// NewMQTTChannel wraps a connected client.
func NewMQTTChannel(client mqtt.Client, topics Topics, logger *slog.Logger) *MQTTChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &MQTTChannel{client: client, topics: topics, logger: logger}
}

// Serve subscribes to the request topic and answers requests using ctrl.
func (c *MQTTChannel) Serve(ctrl Controller) error {
	token := c.client.Subscribe(c.topics.Request, 1, func(_ mqtt.Client, msg mqtt.Message) {
		var req Request
		if err := json.Unmarshal(msg.Payload(), &req); err != nil {
			c.logger.Warn("channel: request unmarshal error", "err", err)
			return
		}
		c.logger.Debug("channel: request", "id", req.ID, "method", req.Method)

		c.publishQoS(c.topics.Response, 1, HandleRequest(ctrl, req))
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", c.topics.Request, token.Error())
	}
	c.logger.Info("channel: subscribed", "topic", c.topics.Request)
	return nil
}

// Close unsubscribes from the request topic.
func (c *MQTTChannel) Close() {
	token := c.client.Unsubscribe(c.topics.Request)
	token.Wait()
}

// NotifyMovement publishes a movement notification.
func (c *MQTTChannel) NotifyMovement(n motion.Notification) {
	c.publish(c.topics.Notify, Event{Method: MethodMovementDetected, Args: n})
}

// SendStatus mirrors a stream record.
func (c *MQTTChannel) SendStatus(st motion.MotionStatus) {
	c.publish(c.topics.Stream, st)
}

// SendError mirrors a classification error on the stream topic.
func (c *MQTTChannel) SendError(err error) {
	c.publish(c.topics.Stream, errorRecord{Error: err.Error()})
}

type errorRecord struct {
	Error string `json:"error"`
}

func (c *MQTTChannel) publish(topic string, v any) {
	c.publishQoS(topic, 0, v)
}

// publishQoS must not wait for the broker: callers hold the detector lock or
// run inside a paho message handler.
func (c *MQTTChannel) publishQoS(topic string, qos byte, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("channel: marshal error", "topic", topic, "err", err)
		return
	}
	token := c.client.Publish(topic, qos, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			c.logger.Error("channel: MQTT publish error", "topic", topic, "err", token.Error())
		}
	}()
}
