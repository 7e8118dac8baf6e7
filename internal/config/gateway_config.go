package config

import "time"

type GatewayConfig interface {
	GetRequestTimeout() time.Duration
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
	GetLoginRoute() string
}

type Gateway struct{}

var _ GatewayConfig = Gateway{}

func (Gateway) GetRequestTimeout() time.Duration {
	return GetEnvDuration("GATEWAY_TIMEOUT", 30*time.Second)
}

// GetRateLimitRPS returns 0 when client-side pacing is disabled.
func (Gateway) GetRateLimitRPS() float64 {
	return GetEnvFloat("GATEWAY_RATE_LIMIT_RPS", 0)
}

func (Gateway) GetRateLimitBurst() int {
	return GetEnvInt("GATEWAY_RATE_LIMIT_BURST", 10)
}

func (Gateway) GetLoginRoute() string {
	return GetEnv("LOGIN_ROUTE", "/login")
}
