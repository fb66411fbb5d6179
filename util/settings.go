package util

import (
	"crypto/rand"
	"fmt"
	"reflect"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const ENV_PREFIX = ""

var Config = viper.New()

var config_listeners []func()

func RegisterNewConfigListener(new_listener func()) {
	for _, listener := range config_listeners {
		if reflect.ValueOf(new_listener).Pointer() == reflect.ValueOf(listener).Pointer() {
			Logger.Warn().Msg("config listener already registered")
			return
		}
	}
	config_listeners = append(config_listeners, new_listener)
}

func OnNewConfig() {
	for _, listener := range config_listeners {
		listener()
	}
}

func GetRandString(n int) string {
	const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, n)
	for i := range b {
		randBytes := make([]byte, 1)
		if _, err := rand.Read(randBytes); err != nil {
			b[i] = letterBytes[i%len(letterBytes)]
		} else {
			b[i] = letterBytes[int(randBytes[0])%len(letterBytes)]
		}
	}
	return string(b)
}

func SetupConfig() {
	Config.SetEnvPrefix(ENV_PREFIX)
	// set defaults
	Config.SetDefault("Broker_URI", "tcp://mqtt:1883")
	Config.SetDefault("Id_base", "latch_controller")
	Config.SetDefault("Username", "")
	Config.SetDefault("Password", "")
	Config.SetDefault("Command_topic", "home/device_commands")
	Config.SetDefault("Online_topic", "hab/online")
	Config.SetDefault("State_topic", "hab/latch/state")
	Config.SetDefault("Discovery_topic", "homeassistant/binary_sensor/latch/config")
	Config.SetDefault("Open_position", 140)
	Config.SetDefault("Close_position", 30)
	Config.SetDefault("Step_delay_ms", 20)
	Config.SetDefault("Reconnect_delay_ms", 5000)
	Config.SetDefault("Network_probe_addr", "")
	Config.SetDefault("Network_probe_delay_ms", 500)
	Config.SetDefault("Pwm_chip", 0)
	Config.SetDefault("Pwm_channel", 0)
	Config.SetDefault("Details_port", 8089)
	Config.SetDefault("Log_level", "info")

	// config file
	Config.SetConfigName("latch_controller")
	Config.AddConfigPath("/")
	Config.AddConfigPath("./")
	Config.AddConfigPath("./config")
	Config.AddConfigPath("/etc")
	Config.AddConfigPath("/latch_controller")
	Config.AddConfigPath("/latch_controller/config")

	err := Config.ReadInConfig()
	if err != nil {
		Logger.Error().Msgf("unable to read config file: %v", fmt.Errorf("%v", err))
	}

	// environment variables
	Config.AutomaticEnv()

	// watch for changes
	Config.WatchConfig()
	Config.OnConfigChange(func(e fsnotify.Event) {
		Logger.Info().Msgf("Config file changed: %v", e.Name)
		Logger.Debug().Msgf("Config Additional Info: %v", e.String())
		OnNewConfig()
	})
}
