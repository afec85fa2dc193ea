package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"battlefun/server"

	"github.com/jinzhu/configor"
)

func main() {

	config := &server.Config{}
	configFiles := make([]string, 0, 1)
	if _, err := os.Stat("config.yml"); err == nil {
		configFiles = append(configFiles, "config.yml")
	}
	if err := configor.Load(config, configFiles...); err != nil {
		log.Fatal("Error while reading configurations", err)
	}

	logger := server.NewLogger(config)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())

	stats := server.NewStats(logger)
	registry := server.NewPlayerRegistry()
	hub := server.NewConnectionHub(registry, logger)
	bridge := server.NewStatefunBridge(config, logger, stats)
	gameMaster := server.NewGameMaster(bridge, logger)
	matchmaker := server.NewMatchmaker()
	pubsub := server.NewPubSub(ctx, config, hub, logger)
	pipeline := server.NewPipeline(hub, logger)
	relay := server.NewUpdateRelay(hub, logger)

	go bridge.Consume(ctx, relay)

	s := server.StartServer(config, registry, hub, matchmaker, gameMaster, pubsub, pipeline, stats, logger)

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Startup was completed")

	<-c

	logger.Info("Shutting down...")
	cancel()
	s.Stop()
	bridge.Close()

}
