package main

import (
	"encoding/json"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	. "github.com/elijahnyp/latch_controller/util"
)

type HAAvailability struct {
	Topic               string `json:"topic"`
	PayloadAvailable    string `json:"payload_available"`
	PayloadNotAvailable string `json:"payload_not_available"`
}

type HADeviceSpec struct {
	Name        string   `json:"name"`
	Identifiers []string `json:"ids"`
}

type HAAdvertisement struct { //nolint:govet // struct layout optimized for JSON field order
	Availability []HAAvailability `json:"availability"`
	Device       HADeviceSpec     `json:"device"`
	UniqueID     string           `json:"uniq_id"`
	Name         string           `json:"name"`
	StateTopic   string           `json:"state_topic"`
	PayloadOn    string           `json:"payload_on"`
	PayloadOff   string           `json:"payload_off"`
	DeviceClass  string           `json:"device_class"`
	Platform     string           `json:"platform"`
	Qos          int              `json:"qos"`
}

func (ha HAAdvertisement) ToJson() string {
	data, err := json.Marshal(ha)
	if err != nil {
		Logger.Error().Msgf("Error marshalling HAAdvertisement: %v", err)
		return ""
	}
	return string(data)
}

func ConstructHAAdvertisement(name, stateTopic string) HAAdvertisement {
	return HAAdvertisement{
		Name:       name,
		StateTopic: stateTopic,
		PayloadOn:  "open",
		PayloadOff: "closed",
		Availability: []HAAvailability{
			{
				Topic:               Config.GetString("online_topic"),
				PayloadAvailable:    "online",
				PayloadNotAvailable: "offline",
			},
		},
		Qos:         0,
		UniqueID:    "latch-" + name,
		DeviceClass: "opening",
		Platform:    "binary_sensor",
		Device: HADeviceSpec{
			Name:        name,
			Identifiers: []string{"latch_" + name},
		},
	}
}

func AdvertiseHA(client MQTT.Client, latch *Latch) {
	ad := ConstructHAAdvertisement(Config.GetString("id_base"), Config.GetString("state_topic"))
	if token := client.Publish(Config.GetString("discovery_topic"), 0, true, ad.ToJson()); token.Wait() && token.Error() != nil {
		Logger.Error().Msgf("Error publishing HA advertisement: %v", token.Error())
	}
}

func PublishState(client MQTT.Client, latch *Latch) {
	state := "closed"
	if latch.Open() {
		state = "open"
	}
	if token := client.Publish(Config.GetString("state_topic"), 0, true, state); token.Wait() && token.Error() != nil {
		Logger.Error().Msgf("Error publishing latch state: %v", token.Error())
	}
}

// HAAdvertiser re-advertises every 5 minutes so a restarted Home
// Assistant rediscovers the latch.
func HAAdvertiser(link *BrokerLink) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		if link.IsConnected() {
			Logger.Debug().Msg("Advertising Home Assistant discovery message")
			AdvertiseHA(link.client, link.latch)
		}
	}
}
