package configs

import "github.com/redis/go-redis/v9"

// Redis configures the connection used for the tracking-event queue.
type Redis struct {
	// Addr is the host:port of the redis server.
	Addr     string `env:"ADDRESS" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	// QueueKey is the list key tracking events are pushed to.
	QueueKey string `env:"QUEUE_KEY" envDefault:"mailtrack:events"`
}

// Options builds the go-redis client options.
func (c Redis) Options() *redis.Options {
	return &redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB}
}
