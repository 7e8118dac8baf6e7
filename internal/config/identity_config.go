package config

type IdentityConfig interface {
	GetIdentityIssuerURL() string
	GetIdentityClientID() string
	GetIdentityClientSecret() string
	GetIdentityRedirectURL() string
	GetIdentityScopes() []string
	GetIdentitySignupURL() string
	GetIdentityPasswordResetURL() string
	GetIdentityProfileURL() string
	GetIdentityChangePasswordURL() string
}

type Identity struct{}

var _ IdentityConfig = Identity{}

func (Identity) GetIdentityIssuerURL() string {
	return GetEnv("IDENTITY_ISSUER_URL", "http://localhost:8080")
}

func (Identity) GetIdentityClientID() string {
	return GetEnv("IDENTITY_CLIENT_ID", "localchef-web")
}

func (Identity) GetIdentityClientSecret() string {
	return GetEnv("IDENTITY_CLIENT_SECRET", "")
}

func (i Identity) GetIdentityRedirectURL() string {
	return GetEnv("IDENTITY_REDIRECT_URL", "http://localhost:5173/callback")
}

func (Identity) GetIdentityScopes() []string {
	return GetEnvList("IDENTITY_SCOPES", []string{"openid", "profile", "email", "offline_access"})
}

func (i Identity) GetIdentitySignupURL() string {
	return GetEnv("IDENTITY_SIGNUP_URL", i.GetIdentityIssuerURL()+"/auth/signup")
}

func (i Identity) GetIdentityPasswordResetURL() string {
	return GetEnv("IDENTITY_PASSWORD_RESET_URL", i.GetIdentityIssuerURL()+"/auth/forgot-password")
}

func (i Identity) GetIdentityProfileURL() string {
	return GetEnv("IDENTITY_PROFILE_URL", i.GetIdentityIssuerURL()+"/api/profile")
}

func (i Identity) GetIdentityChangePasswordURL() string {
	return GetEnv("IDENTITY_CHANGE_PASSWORD_URL", i.GetIdentityIssuerURL()+"/auth/change-password")
}
