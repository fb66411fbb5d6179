package main

import (
	"net"
	"net/url"
	"time"

	. "github.com/elijahnyp/latch_controller/util"
)

// probeAddr resolves the reachability probe target.  Defaults to the
// broker itself when no explicit probe address is configured.
func probeAddr() string {
	addr := Config.GetString("network_probe_addr")
	if addr != "" {
		return addr
	}
	u, err := url.Parse(Config.GetString("broker_uri"))
	if err != nil || u.Host == "" {
		Logger.Warn().Msgf("cannot derive probe address from broker_uri %q", Config.GetString("broker_uri"))
		return Config.GetString("broker_uri")
	}
	return u.Host
}

// WaitForNetwork blocks until the probe address is reachable, retrying at
// a fixed interval.  Runs once before any messaging activity.
func WaitForNetwork() {
	addr := probeAddr()
	delay := time.Duration(Config.GetInt("network_probe_delay_ms")) * time.Millisecond
	Logger.Info().Msgf("Waiting for network (probing %s)", addr)
	for {
		conn, err := net.DialTimeout("tcp", addr, 3*time.Second)
		if err == nil {
			local := conn.LocalAddr().String()
			conn.Close()
			Logger.Info().Msgf("Network up, local address %s", local)
			return
		}
		Logger.Debug().Msgf("network probe failed: %v", err)
		time.Sleep(delay)
	}
}
