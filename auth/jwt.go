package auth

import (
	"context"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"

	"github.com/neuronlabs/fancy/errors"
)

// DefaultIDClaim is the default claim that stores the credential identifier.
const DefaultIDClaim = "id"

// Verifier verifies the raw tokens and extracts the credentials.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Credential, error)
}

// Options are the JWT verifier and signer options.
type Options struct {
	// Secret is the HS256 shared secret.
	Secret []byte
	// IDClaim is the claim that stores the credential identifier.
	IDClaim string
	// Leeway is the allowed clock skew while validating the time claims.
	Leeway time.Duration
	// Expiration is the signed tokens expiration time.
	Expiration time.Duration
}

// Option sets the Options.
type Option func(o *Options)

// WithSecret sets the shared secret.
func WithSecret(secret []byte) Option {
	return func(o *Options) {
		o.Secret = secret
	}
}

// WithIDClaim sets the credential identifier claim.
func WithIDClaim(claim string) Option {
	return func(o *Options) {
		o.IDClaim = claim
	}
}

// WithLeeway sets the time claims leeway.
func WithLeeway(leeway time.Duration) Option {
	return func(o *Options) {
		o.Leeway = leeway
	}
}

// WithExpiration sets the signed tokens expiration.
func WithExpiration(expiration time.Duration) Option {
	return func(o *Options) {
		o.Expiration = expiration
	}
}

func newOptions(options ...Option) (*Options, error) {
	o := &Options{IDClaim: DefaultIDClaim, Leeway: jwt.DefaultLeeway, Expiration: time.Hour}
	for _, option := range options {
		option(o)
	}
	if len(o.Secret) == 0 {
		return nil, errors.NewDet(ClassInitialization, "no secret provided")
	}
	if o.IDClaim == "" {
		return nil, errors.NewDet(ClassInitialization, "no id claim provided")
	}
	return o, nil
}

// JWTVerifier is the Verifier of the HS256 signed JSON web tokens.
type JWTVerifier struct {
	options *Options
}

// compile time check for the Verifier interface.
var _ Verifier = &JWTVerifier{}

// NewJWTVerifier creates new JWT verifier.
func NewJWTVerifier(options ...Option) (*JWTVerifier, error) {
	o, err := newOptions(options...)
	if err != nil {
		return nil, err
	}
	return &JWTVerifier{options: o}, nil
}

// Verify implements Verifier interface. The token signature and time claims are validated
// and the credential identifier is taken from the configured id claim.
func (v *JWTVerifier) Verify(ctx context.Context, token string) (*Credential, error) {
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return nil, errors.NewDet(ClassToken, "malformed token").SetDetails(err.Error())
	}
	var (
		registered jwt.Claims
		claims     map[string]interface{}
	)
	if err = parsed.Claims(v.options.Secret, &registered, &claims); err != nil {
		return nil, errors.NewDet(ClassToken, "invalid token signature").SetDetails(err.Error())
	}
	if err = registered.ValidateWithLeeway(jwt.Expected{Time: time.Now()}, v.options.Leeway); err != nil {
		if err == jwt.ErrExpired {
			return nil, errors.NewDet(ClassTokenExpired, "token expired")
		}
		return nil, errors.NewDet(ClassToken, "invalid token claims").SetDetails(err.Error())
	}
	id, ok := claims[v.options.IDClaim]
	if !ok || id == nil {
		return nil, errors.NewDetf(ClassToken, "token have no '%s' claim", v.options.IDClaim)
	}
	return NewCredential(id, claims), nil
}

// Signer issues the HS256 signed JSON web tokens.
type Signer struct {
	options *Options
	signer  jose.Signer
}

// NewSigner creates new token signer.
func NewSigner(options ...Option) (*Signer, error) {
	o, err := newOptions(options...)
	if err != nil {
		return nil, err
	}
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: o.Secret}, (&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return nil, errors.NewDet(ClassInitialization, "creating signer failed").SetDetails(err.Error())
	}
	return &Signer{options: o, signer: signer}, nil
}

// Sign creates the token for the credential 'id' with the additional 'claims'.
func (s *Signer) Sign(id interface{}, claims map[string]interface{}) (string, error) {
	now := time.Now()
	registered := jwt.Claims{
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Expiry:    jwt.NewNumericDate(now.Add(s.options.Expiration)),
	}
	private := map[string]interface{}{}
	for k, v := range claims {
		private[k] = v
	}
	private[s.options.IDClaim] = id

	token, err := jwt.Signed(s.signer).Claims(registered).Claims(private).CompactSerialize()
	if err != nil {
		return "", errors.NewDet(ClassToken, "signing token failed").SetDetails(err.Error())
	}
	return token, nil
}
