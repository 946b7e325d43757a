package middlewares

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dumbdev/katal/internal"
)

// JWTConfig is the loadable part of the JWT authenticator.
type JWTConfig struct {
	Secret   string        `yaml:"secret" env:"JWT_SECRET"`
	Issuer   string        `yaml:"issuer" env:"JWT_ISSUER"`
	Audience string        `yaml:"audience" env:"JWT_AUDIENCE"`
	Leeway   time.Duration `yaml:"leeway" env:"JWT_LEEWAY" envDefault:"30s"`
}

type jwtOptions struct {
	extractor    internal.Extractor
	newClaims    func() jwt.Claims
	parserOpts   []jwt.ParserOption
	extractorSet bool
}

// JWTOption configures the JWT authenticator.
type JWTOption func(*jwtOptions)

// WithJWTExtractor sets a custom token extractor chain.
// Defaults to the Bearer token from the Authorization header.
func WithJWTExtractor(ext internal.Extractor) JWTOption {
	return func(o *jwtOptions) {
		o.extractor = ext
		o.extractorSet = true
	}
}

// WithJWTClaims sets the claims type to parse into. fn must return a
// fresh pointer on every call. Defaults to *jwt.RegisteredClaims.
func WithJWTClaims(fn func() jwt.Claims) JWTOption {
	return func(o *jwtOptions) {
		if fn != nil {
			o.newClaims = fn
		}
	}
}

// WithJWTIssuer requires the iss claim to equal issuer.
func WithJWTIssuer(issuer string) JWTOption {
	return func(o *jwtOptions) {
		if issuer != "" {
			o.parserOpts = append(o.parserOpts, jwt.WithIssuer(issuer))
		}
	}
}

// WithJWTAudience requires aud to contain audience.
func WithJWTAudience(audience string) JWTOption {
	return func(o *jwtOptions) {
		if audience != "" {
			o.parserOpts = append(o.parserOpts, jwt.WithAudience(audience))
		}
	}
}

// WithJWTLeeway tolerates clock skew when checking exp, nbf and iat.
func WithJWTLeeway(d time.Duration) JWTOption {
	return func(o *jwtOptions) {
		if d > 0 {
			o.parserOpts = append(o.parserOpts, jwt.WithLeeway(d))
		}
	}
}

// JWTAuthenticator verifies HMAC-signed JWTs. The principal is the parsed
// claims value.
type JWTAuthenticator struct {
	extractor internal.Extractor
	newClaims func() jwt.Claims
	parser    *jwt.Parser
	key       []byte
}

// NewJWTAuthenticator creates an authenticator for tokens signed with
// secret using HS256, HS384 or HS512. Tokens must carry an exp claim.
//
//	auth, err := middlewares.NewJWTAuthenticator([]byte(cfg.JWT.Secret),
//	    middlewares.WithJWTIssuer("katal"),
//	)
//	app := katal.New(katal.WithNamedMiddleware("auth", middlewares.Auth(auth)))
func NewJWTAuthenticator(secret []byte, opts ...JWTOption) (*JWTAuthenticator, error) {
	if len(secret) < 32 {
		return nil, ErrWeakSecret
	}

	o := &jwtOptions{
		newClaims: func() jwt.Claims { return &jwt.RegisteredClaims{} },
	}
	for _, opt := range opts {
		opt(o)
	}
	if !o.extractorSet {
		o.extractor = internal.NewExtractor(internal.FromBearerToken())
	}

	parserOpts := append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithExpirationRequired(),
	}, o.parserOpts...)

	return &JWTAuthenticator{
		extractor: o.extractor,
		newClaims: o.newClaims,
		parser:    jwt.NewParser(parserOpts...),
		key:       secret,
	}, nil
}

// NewJWTAuthenticatorFromConfig builds an authenticator from loaded config.
func NewJWTAuthenticatorFromConfig(cfg JWTConfig, opts ...JWTOption) (*JWTAuthenticator, error) {
	base := []JWTOption{
		WithJWTIssuer(cfg.Issuer),
		WithJWTAudience(cfg.Audience),
		WithJWTLeeway(cfg.Leeway),
	}
	return NewJWTAuthenticator([]byte(cfg.Secret), append(base, opts...)...)
}

// Authenticate implements Authenticator. A request without a token is
// anonymous (ok false, nil error).
func (a *JWTAuthenticator) Authenticate(c internal.Context) (any, bool, error) {
	token, ok := a.extractor.Extract(c)
	if !ok {
		return nil, false, nil
	}

	claims := a.newClaims()
	if _, err := a.parser.ParseWithClaims(token, claims, a.keyFunc); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, false, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, true, nil
}

// Sign issues a token for claims with HS256. It is meant for tests and
// for services that mint their own tokens.
func (a *JWTAuthenticator) Sign(claims jwt.Claims) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (a *JWTAuthenticator) keyFunc(*jwt.Token) (any, error) {
	return a.key, nil
}

var _ Authenticator = (*JWTAuthenticator)(nil)
