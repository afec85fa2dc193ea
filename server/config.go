package server

type Config struct {
	SocketConfig struct {
		PingPeriodTime                int `default:"8000"`
		PongWaitTime                  int `default:"10000"`
		WriteWaitTime                 int `default:"5000"`
		ReceivedMessageDecrementCount int `default:"20"`
		OutgoingQueueSize             int `default:"64"`
	}
	KafkaConfig struct {
		Brokers  string `default:"localhost:9092"`
		OutTopic string `default:"to-statefun"`
		InTopic  string `default:"from-statefun"`
		GroupID  string `default:"battlefun-gateway"`
	}
	RabbitMQConfig struct {
		ConnectionString string
	}
	Port               int   `default:"8000"`
	MaxRequestBodySize int64 `default:"4096"`
	DevelopmentEnabled bool  `default:"false"`
}
