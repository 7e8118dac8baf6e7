package config

type Config interface {
	EnvConfig
	APIConfig
	IdentityConfig
	ImageConfig
	GatewayConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetDataFolder() string
}

type mainConfig struct {
	EnvVars
	API
	Identity
	Images
	Gateway
}

func New() Config {
	return mainConfig{}
}
