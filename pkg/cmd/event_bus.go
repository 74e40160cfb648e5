// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/channels/gochannel"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/channels/kafka"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/eventbus"
)

// NewEventBus creates an event bus instance. With brokers configured the
// bus runs on Kafka; without, events stay in process.
func NewEventBus(kafkaBrokers string, logger *slog.Logger) eventbus.EventBus {
	wmLogger := watermill.NewSlogLogger(logger)

	if kafkaBrokers == "" {
		pub, sub, err := gochannel.CreateChannel(wmLogger)
		if err != nil {
			panic(fmt.Errorf("failed to create in-process pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	}

	pub, sub, err := kafka.CreateChannel(wmLogger, kafkaBrokers, "procurement-wizard")
	if err != nil {
		panic(fmt.Errorf("failed to create Kafka pub/sub: %w", err))
	}

	return eventbus.NewWatermillEventBus(pub, sub)
}
