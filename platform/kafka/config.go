package kafka

// Config содержит конфигурацию для подключения к Kafka
type Config struct {
	// Enabled: публиковать ли события в Kafka. При false сервис использует no-op publisher.
	Enabled bool `env:"KAFKA_ENABLED" envDefault:"false"`
	// Brokers — список брокеров Kafka:
	//   - локальная разработка (go run): localhost:19092
	//   - запуск в Docker: kafka:9092
	// Можно указать несколько брокеров через запятую: "broker1:9092,broker2:9092"
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	// Topic: топик событий checkout (оплата одобрена, заказ не записан и т.д.)
	Topic string `env:"KAFKA_TOPIC" envDefault:"storefront.checkout.events"`
	// GroupID: consumer group watcher-а сверок (reconcile watch)
	GroupID string `env:"KAFKA_GROUP_ID" envDefault:"storefront-reconcile"`
}

// DefaultConfig возвращает конфигурацию с дефолтными значениями для локальной разработки.
func DefaultConfig() Config {
	return Config{
		Brokers: []string{"localhost:19092"},
		Topic:   "storefront.checkout.events",
		GroupID: "storefront-reconcile",
	}
}
