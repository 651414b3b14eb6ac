package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/movement_detection/internal/config"
	"github.com/relabs-tech/movement_detection/internal/motion"
)

// RequestAliases maps console shorthands to channel methods.
var RequestAliases = map[string]string{
	"available": MethodIsAvailable,
	"start":     MethodStart,
	"stop":      MethodStop,
}

// RunConsoleMQTT prints notifications, stream records and responses until
// interrupted. A non-empty request alias is sent once after subscribing.
func RunConsoleMQTT(cfg *config.Config, request string, logger *slog.Logger) error {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	logger.Info("console: connected to MQTT broker", "broker", cfg.MQTTBroker)

	if err := SubscribeConsole(client, TopicsFromConfig(cfg), os.Stdout); err != nil {
		return err
	}

	if request != "" {
		method, ok := RequestAliases[request]
		if !ok {
			method = request
		}
		req := NewRequest(method)
		payload, err := json.Marshal(req)
		if err != nil {
			return err
		}
		if token := client.Publish(cfg.TopicRequest, 1, false, payload); token.Wait() && token.Error() != nil {
			return token.Error()
		}
		logger.Info("console: request sent", "id", req.ID, "method", req.Method)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("console: shutting down")
	return nil
}

// SubscribeConsole subscribes to the bridge's outbound topics and writes one
// line per message to w.
func SubscribeConsole(client mqtt.Client, topics Topics, w io.Writer) error {
	subs := map[string]mqtt.MessageHandler{
		topics.Notify: func(_ mqtt.Client, msg mqtt.Message) {
			var ev struct {
				Method string              `json:"method"`
				Args   motion.Notification `json:"args"`
			}
			if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
				fmt.Fprintf(w, "[MOVE] bad payload: %v\n", err)
				return
			}
			fmt.Fprintln(w, formatNotification(ev.Args))
		},
		topics.Stream: func(_ mqtt.Client, msg mqtt.Message) {
			var rec struct {
				motion.MotionStatus
				Error string `json:"error"`
			}
			if err := json.Unmarshal(msg.Payload(), &rec); err != nil {
				fmt.Fprintf(w, "[STRM] bad payload: %v\n", err)
				return
			}
			if rec.Error != "" {
				fmt.Fprintf(w, "[STRM] error: %s\n", rec.Error)
				return
			}
			fmt.Fprintln(w, formatStatus(rec.MotionStatus))
		},
		topics.Response: func(_ mqtt.Client, msg mqtt.Message) {
			var resp Response
			if err := json.Unmarshal(msg.Payload(), &resp); err != nil {
				fmt.Fprintf(w, "[RESP] bad payload: %v\n", err)
				return
			}
			if resp.Error != "" {
				fmt.Fprintf(w, "[RESP] %s error=%s\n", resp.ID, resp.Error)
				return
			}
			fmt.Fprintf(w, "[RESP] %s result=%v\n", resp.ID, resp.Result)
		},
	}

	for topic, handler := range subs {
		token := client.Subscribe(topic, 0, handler)
		token.Wait()
		if token.Error() != nil {
			return fmt.Errorf("subscribe %s: %w", topic, token.Error())
		}
	}
	return nil
}

// TopicsFromConfig collects the bridge topics.
func TopicsFromConfig(cfg *config.Config) Topics {
	return Topics{
		Request:  cfg.TopicRequest,
		Response: cfg.TopicResponse,
		Notify:   cfg.TopicNotify,
		Stream:   cfg.TopicStream,
	}
}
