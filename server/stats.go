package server

import (
	"context"

	"go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

type Stats struct {
	prometheusExporter *prometheus.Exporter
	mSocketRequest     *stats.Int64Measure
	mSocketConnection  *stats.Int64Measure
	mRequest           *stats.Int64Measure
	mBridgePublished   *stats.Int64Measure
	mBridgeConsumed    *stats.Int64Measure
}

func NewStats(logger *Logger) *Stats {

	mSocketRequest := stats.Int64("battlefun/socket_requests", "Socket Request Count", "By")
	vSocketRequestSum := &view.View{
		Name:        "battlefun/socket_requests_sum",
		Measure:     mSocketRequest,
		Description: "The number of total socket request",
		Aggregation: view.Sum(),
	}

	mSocketConnection := stats.Int64("battlefun/socket_connection", "Socket Connection Count", "By")
	vSocketConnectionSum := &view.View{
		Name:        "battlefun/socket_connection_sum",
		Measure:     mSocketConnection,
		Description: "The number of open socket connections",
		Aggregation: view.Sum(),
	}

	mRequest := stats.Int64("battlefun/requests", "Request Count", "By")
	vRequestSum := &view.View{
		Name:        "battlefun/requests_sum",
		Measure:     mRequest,
		Description: "The number of total request",
		Aggregation: view.Sum(),
	}

	mBridgePublished := stats.Int64("battlefun/bridge_published", "Published Bridge Event Count", "By")
	vBridgePublishedSum := &view.View{
		Name:        "battlefun/bridge_published_sum",
		Measure:     mBridgePublished,
		Description: "The number of events published to the engine",
		Aggregation: view.Sum(),
	}

	mBridgeConsumed := stats.Int64("battlefun/bridge_consumed", "Consumed Bridge Event Count", "By")
	vBridgeConsumedSum := &view.View{
		Name:        "battlefun/bridge_consumed_sum",
		Measure:     mBridgeConsumed,
		Description: "The number of events consumed from the engine",
		Aggregation: view.Sum(),
	}

	if err := view.Register(vSocketRequestSum, vSocketConnectionSum, vRequestSum, vBridgePublishedSum, vBridgeConsumedSum); err != nil {
		logger.Fatalw("Error while registering stat views", "error", err)
	}

	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: "battlefun",
	})
	if err != nil {
		logger.Fatalw("Error while creating new prometheus exporter", "error", err)
	}

	view.RegisterExporter(pe)

	return &Stats{
		prometheusExporter: pe,
		mSocketRequest:     mSocketRequest,
		mSocketConnection:  mSocketConnection,
		mRequest:           mRequest,
		mBridgePublished:   mBridgePublished,
		mBridgeConsumed:    mBridgeConsumed,
	}

}

func (s *Stats) IncrSocketRequest() {
	ctx, _ := tag.New(context.Background())
	stats.Record(ctx, s.mSocketRequest.M(1))
}

func (s *Stats) IncrRequest() {
	ctx, _ := tag.New(context.Background())
	stats.Record(ctx, s.mRequest.M(1))
}

func (s *Stats) IncrSocketConnection() {
	ctx, _ := tag.New(context.Background())
	stats.Record(ctx, s.mSocketConnection.M(1))
}

func (s *Stats) DecrSocketConnection() {
	ctx, _ := tag.New(context.Background())
	stats.Record(ctx, s.mSocketConnection.M(-1))
}

func (s *Stats) IncrBridgePublished() {
	ctx, _ := tag.New(context.Background())
	stats.Record(ctx, s.mBridgePublished.M(1))
}

func (s *Stats) IncrBridgeConsumed() {
	ctx, _ := tag.New(context.Background())
	stats.Record(ctx, s.mBridgeConsumed.M(1))
}
