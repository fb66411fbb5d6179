package main

import (
	"errors"
	"sync"
	"testing"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	. "github.com/elijahnyp/latch_controller/util"
)

// Mock MQTT client for testing
type MockMQTTClient struct {
	publishCalls    []PublishCall
	subscribeCalls  []SubscribeCall
	connected       bool
	connectAttempts int
	connectFailures int // number of Connect calls to fail before succeeding
	subscribeFails  int // number of Subscribe calls to fail before succeeding
	disconnectCalls int
	mu              sync.RWMutex
}

type PublishCall struct {
	Payload  interface{}
	Topic    string
	QoS      byte
	Retained bool
}

type SubscribeCall struct {
	Handler MQTT.MessageHandler
	Topic   string
	QoS     byte
}

func (m *MockMQTTClient) IsConnected() bool      { return m.connected }
func (m *MockMQTTClient) IsConnectionOpen() bool { return m.connected }

func (m *MockMQTTClient) Connect() MQTT.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectAttempts++
	if m.connectFailures > 0 {
		m.connectFailures--
		return &MockToken{err: errors.New("connection refused")}
	}
	m.connected = true
	return &MockToken{}
}

func (m *MockMQTTClient) Disconnect(quiesce uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnectCalls++
	m.connected = false
}

func (m *MockMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) MQTT.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishCalls = append(m.publishCalls, PublishCall{
		Topic:    topic,
		QoS:      qos,
		Retained: retained,
		Payload:  payload,
	})
	return &MockToken{}
}

func (m *MockMQTTClient) Subscribe(topic string, qos byte, callback MQTT.MessageHandler) MQTT.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subscribeFails > 0 {
		m.subscribeFails--
		return &MockToken{err: errors.New("not authorized")}
	}
	m.subscribeCalls = append(m.subscribeCalls, SubscribeCall{
		Topic:   topic,
		QoS:     qos,
		Handler: callback,
	})
	return &MockToken{}
}

func (m *MockMQTTClient) SubscribeMultiple(filters map[string]byte, callback MQTT.MessageHandler) MQTT.Token {
	return &MockToken{}
}
func (m *MockMQTTClient) Unsubscribe(topics ...string) MQTT.Token             { return &MockToken{} }
func (m *MockMQTTClient) AddRoute(topic string, callback MQTT.MessageHandler) {}
func (m *MockMQTTClient) OptionsReader() MQTT.ClientOptionsReader             { return MQTT.ClientOptionsReader{} }

// Mock MQTT token
type MockToken struct {
	err error
}

func (m *MockToken) Wait() bool                     { return true }
func (m *MockToken) WaitTimeout(time.Duration) bool { return true }
func (m *MockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (m *MockToken) Error() error { return m.err }

// Mock MQTT message
type MockMessage struct {
	topic   string
	payload []byte
}

func (m *MockMessage) Duplicate() bool   { return false }
func (m *MockMessage) Qos() byte         { return 0 }
func (m *MockMessage) Retained() bool    { return false }
func (m *MockMessage) Topic() string     { return m.topic }
func (m *MockMessage) MessageID() uint16 { return 0 }
func (m *MockMessage) Payload() []byte   { return m.payload }
func (m *MockMessage) Ack()              {}

func newMockLink(mock *MockMQTTClient) *BrokerLink {
	orig := newMQTTClient
	newMQTTClient = func(opts *MQTT.ClientOptions) MQTT.Client { return mock }
	defer func() { newMQTTClient = orig }()
	latch, _ := newTestLatch(Config.GetInt("close_position"))
	return NewBrokerLink(latch)
}

func TestReconnectSubscribesCommandTopic(t *testing.T) {
	mock := &MockMQTTClient{}
	link := newMockLink(mock)

	link.Reconnect()

	if !link.IsConnected() {
		t.Error("link should be connected after Reconnect")
	}
	if len(mock.subscribeCalls) != 1 {
		t.Fatalf("Expected 1 subscribe call, got %d", len(mock.subscribeCalls))
	}
	if mock.subscribeCalls[0].Topic != Config.GetString("command_topic") {
		t.Errorf("Subscribed to %s, expected %s", mock.subscribeCalls[0].Topic, Config.GetString("command_topic"))
	}
	if mock.subscribeCalls[0].Handler == nil {
		t.Error("Subscription handler should not be nil")
	}
}

func TestReconnectPublishesPresence(t *testing.T) {
	mock := &MockMQTTClient{}
	link := newMockLink(mock)

	link.Reconnect()

	if len(mock.publishCalls) < 3 {
		t.Fatalf("Expected online, discovery and state publishes, got %d calls", len(mock.publishCalls))
	}
	online := mock.publishCalls[0]
	if online.Topic != Config.GetString("online_topic") || online.Payload != "online" {
		t.Errorf("Expected online message to %s, got %v to %s", Config.GetString("online_topic"), online.Payload, online.Topic)
	}
	topics := make(map[string]bool)
	for _, call := range mock.publishCalls {
		topics[call.Topic] = true
	}
	if !topics[Config.GetString("discovery_topic")] {
		t.Error("Expected HA discovery advertisement on connect")
	}
	if !topics[Config.GetString("state_topic")] {
		t.Error("Expected latch state publish on connect")
	}
}

func TestReconnectRetriesUntilBrokerAccepts(t *testing.T) {
	mock := &MockMQTTClient{connectFailures: 3}
	link := newMockLink(mock)

	link.Reconnect()

	if mock.connectAttempts != 4 {
		t.Errorf("Expected 4 connect attempts, got %d", mock.connectAttempts)
	}
	if !link.IsConnected() {
		t.Error("link should be connected after retries succeed")
	}
	if len(mock.subscribeCalls) != 1 {
		t.Errorf("Expected subscription after successful connect, got %d calls", len(mock.subscribeCalls))
	}
}

func TestReconnectRetriesFailedSubscribe(t *testing.T) {
	mock := &MockMQTTClient{subscribeFails: 1}
	link := newMockLink(mock)

	link.Reconnect()

	if mock.disconnectCalls != 1 {
		t.Errorf("Expected 1 disconnect after failed subscribe, got %d", mock.disconnectCalls)
	}
	if mock.connectAttempts != 2 {
		t.Errorf("Expected 2 connect attempts, got %d", mock.connectAttempts)
	}
	if len(mock.subscribeCalls) != 1 {
		t.Errorf("Expected eventual successful subscription, got %d calls", len(mock.subscribeCalls))
	}
}
