package config

// Auth defines the credentials configuration.
type Auth struct {
	// Secret is the HMAC secret used to verify the tokens.
	Secret string `mapstructure:"secret"`

	// Header is the request header containing the bearer token.
	Header string `mapstructure:"header"`

	// IDClaim is the token claim that stores the credential identifier.
	IDClaim string `mapstructure:"id_claim"`
}
