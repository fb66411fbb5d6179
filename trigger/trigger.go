package main

import (
	"flag"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	. "github.com/elijahnyp/latch_controller/util"
)

// Companion publisher - sends a trigger phrase to the command topic.

const (
	publish_attempts = 3
	retry_delay      = 2 * time.Second
)

func main() {
	phrase := flag.String("phrase", "halloween1 activated", "trigger phrase to publish")
	flag.Parse()

	LogInit("info")
	SetupConfig()

	opts := MQTT.NewClientOptions()
	opts.AddBroker(Config.GetString("broker_uri"))
	opts.SetClientID(Config.GetString("id_base") + "_trigger_" + GetRandString(6))
	opts.SetUsername(Config.GetString("username"))
	opts.SetPassword(Config.GetString("password"))
	client := MQTT.NewClient(opts)

	topic := Config.GetString("command_topic")
	for attempt := 1; attempt <= publish_attempts; attempt++ {
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			Logger.Warn().Msgf("Error connecting to broker (attempt %d): %v", attempt, token.Error())
			time.Sleep(retry_delay)
			continue
		}
		if token := client.Publish(topic, 0, false, *phrase); token.Wait() && token.Error() != nil {
			Logger.Warn().Msgf("Error publishing (attempt %d): %v", attempt, token.Error())
			client.Disconnect(250)
			time.Sleep(retry_delay)
			continue
		}
		Logger.Info().Msgf("published %q to %s", *phrase, topic)
		client.Disconnect(250)
		return
	}
	Logger.Error().Msgf("all %d publish attempts failed", publish_attempts)
}
