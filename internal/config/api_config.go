package config

import "strings"

type APIConfig interface {
	GetAPIURL() string
	GetPublicAPIURL() string
}

type API struct{}

var _ APIConfig = API{}

// GetAPIURL is the REST backend used by the authenticated gateway.
func (API) GetAPIURL() string {
	return strings.TrimRight(GetEnv("API_URL", "http://localhost:3000"), "/")
}

// GetPublicAPIURL is used for the unauthenticated calls (user upsert, reviews
// marquee, complaints, newsletter). Defaults to the API URL.
func (a API) GetPublicAPIURL() string {
	return strings.TrimRight(GetEnv("PUBLIC_API_URL", a.GetAPIURL()), "/")
}
