// Package auth models the tagged AuthConfig variant (§4.8) and how each
// kind applies itself to an outbound request.
package auth

import "net/http"

type Kind int

const (
	KindNone Kind = iota
	KindAPIKey
	KindAWSCredentials
)

// Config is a tagged variant: exactly one of the kind-specific field groups
// is meaningful, selected by Kind.
type Config struct {
	Kind Kind

	// KindAPIKey
	Key    string
	Header string // default "authorization"
	Prefix string // default "Bearer"

	// KindAWSCredentials
	AccessKey    string
	SecretKey    string
	SessionToken string
	Region       string
	Service      string
}

func None() Config {
	return Config{Kind: KindNone}
}

// APIKey builds an ApiKey auth config, defaulting Header to "authorization"
// and Prefix to "Bearer" when empty, per spec §4.8.
func APIKey(key, header, prefix string) Config {
	if header == "" {
		header = "authorization"
	}

	if prefix == "" {
		prefix = "Bearer"
	}

	return Config{Kind: KindAPIKey, Key: key, Header: header, Prefix: prefix}
}

func AWSCredentials(accessKey, secretKey, sessionToken, region, service string) Config {
	return Config{
		Kind:         KindAWSCredentials,
		AccessKey:    accessKey,
		SecretKey:    secretKey,
		SessionToken: sessionToken,
		Region:       region,
		Service:      service,
	}
}

// ApplyHeaders installs the appropriate header(s) for ApiKey auth. Bedrock
// clients do not call this; they read AWSCreds() for SigV4 signing
// instead.
func (c Config) ApplyHeaders(h http.Header) {
	if c.Kind != KindAPIKey {
		return
	}

	value := c.Key
	if c.Prefix != "" {
		value = c.Prefix + " " + c.Key
	}

	h.Set(c.Header, value)
}

// AWSCreds returns the AWS credential fields, for Bedrock signing call
// sites. ok is false unless Kind == KindAWSCredentials.
func (c Config) AWSCreds() (accessKey, secretKey, sessionToken, region, service string, ok bool) {
	if c.Kind != KindAWSCredentials {
		return "", "", "", "", "", false
	}

	return c.AccessKey, c.SecretKey, c.SessionToken, c.Region, c.Service, true
}
