package config

const (
	StorageDriverMemory = "memory"
	StorageDriverSQLite = "sqlite"
	StorageDriverRedis  = "redis"
)

type StorageConfig interface {
	GetStorageDriver() string
	GetStoragePath() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
}

type storageSettings struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type redisSettings struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

func (c mainConfig) GetStorageDriver() string {
	return c.Storage.Driver
}

func (c mainConfig) GetStoragePath() string {
	return c.Storage.Path
}

func (c mainConfig) GetRedisAddr() string {
	return c.Redis.Addr
}

func (c mainConfig) GetRedisPassword() string {
	return c.Redis.Password
}

func (c mainConfig) GetRedisDB() int {
	return c.Redis.DB
}

func (c mainConfig) GetRedisPrefix() string {
	return c.Redis.Prefix
}
