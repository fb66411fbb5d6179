package main

import (
	"net"
	"testing"
	"time"

	. "github.com/elijahnyp/latch_controller/util"
)

func TestProbeAddrExplicit(t *testing.T) {
	Config.Set("network_probe_addr", "192.0.2.1:53")
	defer Config.Set("network_probe_addr", "")

	if addr := probeAddr(); addr != "192.0.2.1:53" {
		t.Errorf("probeAddr() = %s, expected configured probe address", addr)
	}
}

func TestProbeAddrDerivedFromBroker(t *testing.T) {
	Config.Set("network_probe_addr", "")
	Config.Set("broker_uri", "tcp://broker.local:1883")

	if addr := probeAddr(); addr != "broker.local:1883" {
		t.Errorf("probeAddr() = %s, expected broker host:port", addr)
	}
}

func TestWaitForNetworkReturnsWhenReachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to open test listener: %v", err)
	}
	defer listener.Close()

	Config.Set("network_probe_addr", listener.Addr().String())
	defer Config.Set("network_probe_addr", "")
	Config.Set("network_probe_delay_ms", 1)

	done := make(chan struct{})
	go func() {
		WaitForNetwork()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("WaitForNetwork did not return with a reachable probe address")
	}
}
