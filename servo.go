package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	. "github.com/elijahnyp/latch_controller/util"
)

// ServoIO is the positional hardware primitive the driver sweeps.
// Read returns the last commanded position.
type ServoIO interface {
	Read() int
	Write(position int) error
}

type ServoDriver struct {
	io ServoIO
}

func NewServoDriver(io ServoIO) *ServoDriver {
	return &ServoDriver{io: io}
}

func (d *ServoDriver) Position() int {
	return d.io.Read()
}

// MoveTo sweeps one degree at a time so the latch doesn't slam.
// Blocks for the duration of the sweep.
func (d *ServoDriver) MoveTo(target int) {
	delay := time.Duration(Config.GetInt("step_delay_ms")) * time.Millisecond
	current := d.io.Read()
	if current < target {
		for pos := current; pos <= target; pos++ {
			if err := d.io.Write(pos); err != nil {
				Logger.Error().Msgf("Error writing servo position %d: %v", pos, err)
			}
			time.Sleep(delay)
		}
	} else {
		for pos := current; pos >= target; pos-- {
			if err := d.io.Write(pos); err != nil {
				Logger.Error().Msgf("Error writing servo position %d: %v", pos, err)
			}
			time.Sleep(delay)
		}
	}
}

// SysfsPWM drives a hobby servo through the Linux sysfs PWM interface.
// Angle 0-180 maps onto a 500-2500us pulse within a 20ms period.
type SysfsPWM struct {
	base     string
	position int
}

const (
	pwm_period_ns    = 20000000
	pwm_min_pulse_ns = 500000
	pwm_max_pulse_ns = 2500000
	servo_range      = 180
)

func NewSysfsPWM() (*SysfsPWM, error) {
	chip := Config.GetInt("pwm_chip")
	channel := Config.GetInt("pwm_channel")
	chipdir := fmt.Sprintf("/sys/class/pwm/pwmchip%d", chip)
	base := filepath.Join(chipdir, fmt.Sprintf("pwm%d", channel))

	if _, err := os.Stat(base); os.IsNotExist(err) {
		if werr := os.WriteFile(filepath.Join(chipdir, "export"), []byte(fmt.Sprintf("%d", channel)), 0644); werr != nil {
			return nil, fmt.Errorf("exporting pwm channel %d: %v", channel, werr)
		}
	}
	if err := os.WriteFile(filepath.Join(base, "period"), []byte(fmt.Sprintf("%d", pwm_period_ns)), 0644); err != nil {
		return nil, fmt.Errorf("setting pwm period: %v", err)
	}
	if err := os.WriteFile(filepath.Join(base, "enable"), []byte("1"), 0644); err != nil {
		return nil, fmt.Errorf("enabling pwm: %v", err)
	}
	return &SysfsPWM{base: base}, nil
}

func (p *SysfsPWM) Read() int {
	return p.position
}

func (p *SysfsPWM) Write(position int) error {
	pulse := pwm_min_pulse_ns + position*(pwm_max_pulse_ns-pwm_min_pulse_ns)/servo_range
	if err := os.WriteFile(filepath.Join(p.base, "duty_cycle"), []byte(fmt.Sprintf("%d", pulse)), 0644); err != nil {
		return err
	}
	p.position = position
	return nil
}
