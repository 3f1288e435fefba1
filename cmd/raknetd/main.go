package main

import (
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"

	"github.com/ventosilenzioso/go-raknet/examplesession"
	"github.com/ventosilenzioso/go-raknet/pkg/logger"
)

const (
	version     = "1.0.0"
	bindAddr    = "0.0.0.0:19132"
	metricsAddr = "127.0.0.1:9090"
)

func main() {
	logger.Banner("RakNet Engine", version)
	defer logger.Sync()

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		logger.Info("metrics listening on %s", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, nil); err != nil {
			logger.Error("metrics server stopped: %v", err)
		}
	}()

	srv := examplesession.NewServer(onDeliver)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(bindAddr); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Fatal("raknet: server error: %v", err)
	case sig := <-sigCh:
		logger.Warn("raknet: received signal: %v", sig)
		srv.Stop()
		time.Sleep(200 * time.Millisecond)
		logger.Success("raknet: server stopped")
	}
}

func onDeliver(id xid.ID, addr *net.UDPAddr, payload []byte) {
	logger.Debug("raknet: %d bytes delivered from session %s (%s)", len(payload), id, addr)
}
