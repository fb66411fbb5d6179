package main

import (
	"time"

	. "github.com/elijahnyp/latch_controller/util"
)

func main() {
	LogInit("trace")
	SetupConfig()
	RegisterNewConfigListener(func() { LogInit(Config.GetString("log_level")) })
	OnNewConfig()

	WaitForNetwork()

	pwm, err := NewSysfsPWM()
	if err != nil {
		Logger.Fatal().Msgf("Error opening servo pwm: %v", err)
	}
	driver := NewServoDriver(pwm)
	latch := NewLatch(driver)
	latch.Park() // start from the closed endpoint

	link := NewBrokerLink(latch)

	monitor := NewMonitorServer()
	monitor.AddHandler("/status", StatusHandler(link, latch))
	if err := monitor.Start(); err != nil {
		Logger.Error().Msgf("Error starting monitor server: %v", err)
	}
	RegisterNewConfigListener(func() { monitor.Restart() })

	go OnlinePinger(link)
	go HAAdvertiser(link)

	Logger.Info().Msg("ready")
	// supervise loop - paho services inbound messages and keep-alive on
	// its own goroutines; this loop only resurrects the session
	for {
		if !link.IsConnected() {
			link.Reconnect()
		}
		time.Sleep(time.Second)
	}
}
