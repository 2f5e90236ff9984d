package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/daemonp/unii2mqtt/internal/cache"
	"github.com/daemonp/unii2mqtt/internal/config"
	"github.com/daemonp/unii2mqtt/internal/homeassistant"
	"github.com/daemonp/unii2mqtt/internal/log"
	"github.com/daemonp/unii2mqtt/internal/mqtt"
	"github.com/daemonp/unii2mqtt/internal/panel"
)

func main() {
	configFile := flag.String("config", "config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := log.NewLogger(cfg.Log)

	p, err := panel.NewPanel(cfg, logger)
	if err != nil {
		logger.Error("Failed to set up panel: %v", err)
		os.Exit(1)
	}

	mqttClient := mqtt.NewMQTT(&cfg.MQTT, p, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Seed the panel state from the cache so topics and discovery can be
	// announced before the handshake completes.
	if cfg.Cache {
		cacheData, err := cache.LoadCache()
		if err != nil {
			logger.Warn("Failed to load cache: %v", err)
		} else if cacheData != nil {
			p.SetCachedData(cacheData)
			logger.Info("Loaded arrangement from cache")
		}
	}

	if err := p.Connect(); err != nil {
		logger.Error("Failed to connect to panel: %v", err)
		os.Exit(1)
	}

	if cfg.Cache {
		if err := cache.SaveCache(p.GetCacheableData()); err != nil {
			logger.Warn("Failed to save cache: %v", err)
		} else {
			logger.Info("Saved arrangement to cache")
		}
	}

	if err := mqttClient.Connect(); err != nil {
		logger.Error("Failed to connect to MQTT broker: %v", err)
		p.Disconnect()
		os.Exit(1)
	}

	if cfg.HomeAssistant.Discovery {
		ha := homeassistant.New(cfg, mqttClient, p, logger)
		ha.Start()
	}

	<-sigChan

	logger.Info("Shutting down...")
	mqttClient.Close()
	p.Disconnect()
}
