package main

import (
	"strings"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	. "github.com/elijahnyp/latch_controller/util"
)

// phrases that trigger a toggle, case-folded
var trigger_phrases = map[string]bool{
	"halloween 1":          true,
	"halloween1 activated": true,
	"activate halloween 1": true,
}

type Latch struct {
	driver         *ServoDriver
	open           bool
	open_position  int
	close_position int
}

func NewLatch(driver *ServoDriver) *Latch {
	return &Latch{
		driver:         driver,
		open_position:  Config.GetInt("open_position"),
		close_position: Config.GetInt("close_position"),
	}
}

// Park commands the close position directly without a sweep.  Run once at
// startup so the latch starts from a known endpoint.
func (l *Latch) Park() {
	if err := l.driver.io.Write(l.close_position); err != nil {
		Logger.Error().Msgf("Error parking latch: %v", err)
	}
	l.open = false
}

func (l *Latch) Open() bool {
	return l.open
}

func (l *Latch) Toggle() {
	if l.open {
		l.driver.MoveTo(l.close_position)
		l.open = false
	} else {
		l.driver.MoveTo(l.open_position)
		l.open = true
	}
	Logger.Info().Msgf("latch toggled: open=%v", l.open)
}

// Receiver is the MQTT message handler for the command topic.  Payloads
// that don't match a trigger phrase are ignored.
func (l *Latch) Receiver(client MQTT.Client, message MQTT.Message) {
	Logger.Debug().Msgf("Message Received on topic %s", message.Topic())
	phrase := strings.ToLower(string(message.Payload()))
	if !trigger_phrases[phrase] {
		Logger.Debug().Msgf("payload %q is not a trigger phrase - ignoring", phrase)
		return
	}
	l.Toggle()
	PublishState(client, l)
}
