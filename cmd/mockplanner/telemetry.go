package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	natiu "github.com/soypat/natiu-mqtt"
	"golang.org/x/net/proxy"

	"github.com/laserctl/motioncore"
)

// telemetryFrame is the JSON payload published on every diagnostics tick.
type telemetryFrame struct {
	Block     string  `json:"block"`
	Completed uint32  `json:"step_events_completed"`
	Total     uint32  `json:"step_event_count"`
	Rate      uint32  `json:"adjusted_rate"`
	X         float64 `json:"x_mm"`
	Y         float64 `json:"y_mm"`
	Z         float64 `json:"z_mm"`
	Stop      string  `json:"stop_status"`
	Running   bool    `json:"processing"`
}

const telemetryTopic = "laserctl/motioncore/diagnostics"

// devicePublisher is the on-device side of the telemetry link: a
// lightweight natiu-mqtt client publishing one frame per diagnostics
// tick, in the spirit of the teacher's low-allocation comboat transport.
type devicePublisher struct {
	client natiu.Client
	topic  string
}

// dialDevicePublisher opens a natiu-mqtt session to broker ("host:port")
// and returns a publisher bound to the standard diagnostics topic.
func dialDevicePublisher(ctx context.Context, broker, clientID string) (*devicePublisher, error) {
	conn, err := net.Dial("tcp", broker)
	if err != nil {
		return nil, fmt.Errorf("mockplanner: dial mqtt broker: %w", err)
	}

	client := natiu.NewClient(natiu.ClientConfig{
		Decoder: natiu.DecoderLimitedSize{MaxPacketSize: 4096},
		OnPub: func(pubHead natiu.Header, r natiu.TxOpt) error {
			return nil
		},
	})

	var varConn natiu.VariablesConnect
	varConn.SetDefaultMQTT([]byte(clientID))
	varConn.CleanSession = true
	if err := client.Connect(ctx, conn, &varConn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("mockplanner: mqtt connect: %w", err)
	}

	return &devicePublisher{client: *client, topic: telemetryTopic}, nil
}

// Publish sends one diagnostics frame. Errors are non-fatal, mirroring
// the teacher's practice of logging comms failures rather than
// panicking a running motion core.
func (p *devicePublisher) Publish(d motioncore.Diagnostics) error {
	payload, err := json.Marshal(diagnosticsToFrame(d))
	if err != nil {
		return err
	}
	return p.client.PublishPayload(natiu.Header{
		Flags: natiu.PublishFlags(natiu.QoS0).SetRetain(false),
	}, p.topic, payload)
}

// diagnosticsToFrame fills the block, progress, rate and status fields.
// Diagnostics carries position in steps only, so X, Y and Z are left zero.
func diagnosticsToFrame(d motioncore.Diagnostics) telemetryFrame {
	return telemetryFrame{
		Block:     d.BlockType.String(),
		Completed: d.StepEventsCompleted,
		Total:     d.StepEventCount,
		Rate:      d.AdjustedRate,
		Stop:      d.StopStatus.String(),
		Running:   d.Processing,
	}
}

// hostSubscriber is the bench-side collaborator: a paho.mqtt.golang
// client subscribing to the same topic a devicePublisher writes to, for
// watching a running core from a workstation.
type hostSubscriber struct {
	client paho.Client
}

// dialHostSubscriber connects to broker and subscribes handler to the
// diagnostics topic. When proxyAddr is non-empty, the broker is first
// probed once through that SOCKS5 proxy; the MQTT connection itself is
// dialed directly by paho, not through the proxy.
func dialHostSubscriber(broker, proxyAddr string, handler func(telemetryFrame)) (*hostSubscriber, error) {
	opts := paho.NewClientOptions().AddBroker(broker)

	if proxyAddr != "" {
		dialer, err := proxy.SOCKS5("tcp", proxyAddr, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("mockplanner: configure proxy dialer: %w", err)
		}
		// Probe reachability through the proxy before handing the real
		// connection off to paho, which dials the broker itself.
		conn, err := dialer.Dial("tcp", brokerHostPort(broker))
		if err != nil {
			return nil, fmt.Errorf("mockplanner: proxy reachability probe: %w", err)
		}
		conn.Close()
	}

	client := paho.NewClient(opts)
	if token := client.Connect(); token.WaitTimeout(5*time.Second) && token.Error() != nil {
		return nil, fmt.Errorf("mockplanner: mqtt connect: %w", token.Error())
	}

	client.Subscribe(telemetryTopic, 0, func(_ paho.Client, msg paho.Message) {
		var frame telemetryFrame
		if err := json.Unmarshal(msg.Payload(), &frame); err != nil {
			return
		}
		handler(frame)
	})

	return &hostSubscriber{client: client}, nil
}

func (h *hostSubscriber) Close() {
	h.client.Disconnect(250)
}

// brokerHostPort strips a "tcp://" scheme from a paho broker URL, since
// the proxy dialer wants a bare host:port.
func brokerHostPort(broker string) string {
	const scheme = "tcp://"
	if len(broker) > len(scheme) && broker[:len(scheme)] == scheme {
		return broker[len(scheme):]
	}
	return broker
}
