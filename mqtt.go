package main

import (
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	. "github.com/elijahnyp/latch_controller/util"
)

// replaced in tests
var newMQTTClient = MQTT.NewClient

type BrokerLink struct {
	client MQTT.Client
	latch  *Latch
}

var connectLostHandler MQTT.ConnectionLostHandler = func(client MQTT.Client, err error) {
	Logger.Info().Msgf("Connect lost: %v", err)
}

func NewBrokerLink(latch *Latch) *BrokerLink {
	opts := MQTT.NewClientOptions()
	opts.AddBroker(Config.GetString("broker_uri"))
	opts.SetClientID(Config.GetString("id_base") + "_" + GetRandString(6))
	opts.SetUsername(Config.GetString("username"))
	opts.SetPassword(Config.GetString("password"))
	opts.SetCleanSession(true)
	// reconnection is the supervise loop's job, not paho's
	opts.SetAutoReconnect(false)
	opts.SetWill(Config.GetString("online_topic"), "offline", 0, false)
	opts.OnConnectionLost = connectLostHandler

	return &BrokerLink{
		client: newMQTTClient(opts),
		latch:  latch,
	}
}

func (b *BrokerLink) IsConnected() bool {
	return b.client.IsConnected()
}

// Reconnect blocks until a broker session is established and the command
// topic is subscribed.  There is no retry limit - nothing useful can
// happen while disconnected.
func (b *BrokerLink) Reconnect() {
	delay := time.Duration(Config.GetInt("reconnect_delay_ms")) * time.Millisecond
	topic := Config.GetString("command_topic")
	for {
		if token := b.client.Connect(); token.Wait() && token.Error() != nil {
			Logger.Warn().Msgf("Error connecting to broker: %v", token.Error())
			time.Sleep(delay)
			continue
		}
		if token := b.client.Subscribe(topic, 0, b.latch.Receiver); token.Wait() && token.Error() != nil {
			Logger.Warn().Msgf("Error Subscribing: %v", token.Error())
			b.client.Disconnect(250)
			time.Sleep(delay)
			continue
		}
		Logger.Info().Msgf("Connected and subscribed to %s", topic)
		b.client.Publish(Config.GetString("online_topic"), 0, false, "online").Wait()
		AdvertiseHA(b.client, b.latch)
		PublishState(b.client, b.latch)
		return
	}
}

// OnlinePinger republishes the online presence message every 10s.
func OnlinePinger(link *BrokerLink) {
	for {
		if link.IsConnected() {
			if token := link.client.Publish(Config.GetString("online_topic"), 0, false, "online"); token.Wait() && token.Error() != nil {
				Logger.Error().Msgf("Error publishing online message: %v", token.Error())
			}
		}
		time.Sleep(10 * time.Second)
	}
}
