package pasetotoken

import (
	"fmt"
	"strings"
	"time"

	paseto "aidanwoods.dev/go-paseto"

	"github.com/ridhamz/AppointmentEase/config"
)

type Mode string

const (
	ModeLocal  Mode = "local"  // v4.local, encrypted
	ModePublic Mode = "public" // v4.public, signed
)

// Keys holds the key material for one mode. In public mode Secret may be nil
// on verify-only deployments.
type Keys struct {
	Mode Mode

	Symmetric *paseto.V4SymmetricKey

	Secret *paseto.V4AsymmetricSecretKey
	Public *paseto.V4AsymmetricPublicKey
}

// KeysFromConfig decodes the hex keys configured for the selected mode.
// A public key, when given, takes precedence over the one derived from the
// secret.
func KeysFromConfig(p config.PasetoConfig) (Keys, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(p.Mode)))

	switch mode {
	case ModeLocal:
		k, err := paseto.V4SymmetricKeyFromHex(strings.TrimSpace(p.LocalKeyHex))
		if err != nil {
			return Keys{}, fmt.Errorf("%w: local_key_hex: %v", ErrConfig, err)
		}
		return Keys{Mode: ModeLocal, Symmetric: &k}, nil

	case ModePublic:
		out := Keys{Mode: ModePublic}
		if h := strings.TrimSpace(p.SecretKeyHex); h != "" {
			sk, err := paseto.NewV4AsymmetricSecretKeyFromHex(h)
			if err != nil {
				return Keys{}, fmt.Errorf("%w: secret_key_hex: %v", ErrConfig, err)
			}
			pk := sk.Public()
			out.Secret, out.Public = &sk, &pk
		}
		if h := strings.TrimSpace(p.PublicKeyHex); h != "" {
			pk, err := paseto.NewV4AsymmetricPublicKeyFromHex(h)
			if err != nil {
				return Keys{}, fmt.Errorf("%w: public_key_hex: %v", ErrConfig, err)
			}
			out.Public = &pk
		}
		if out.Public == nil {
			return Keys{}, fmt.Errorf("%w: public mode needs secret_key_hex or public_key_hex", ErrConfig)
		}
		return out, nil

	default:
		return Keys{}, fmt.Errorf("%w: unknown mode %q", ErrConfig, p.Mode)
	}
}

// GenerateKeys creates fresh key material for mode.
func GenerateKeys(mode Mode) (Keys, error) {
	switch mode {
	case ModeLocal:
		k := paseto.NewV4SymmetricKey()
		return Keys{Mode: ModeLocal, Symmetric: &k}, nil
	case ModePublic:
		sk := paseto.NewV4AsymmetricSecretKey()
		pk := sk.Public()
		return Keys{Mode: ModePublic, Secret: &sk, Public: &pk}, nil
	default:
		return Keys{}, fmt.Errorf("%w: unknown mode %q", ErrConfig, mode)
	}
}

// ConfigHex renders k as the config keys it was generated for.
func (k Keys) ConfigHex() map[string]string {
	out := map[string]string{}
	if k.Symmetric != nil {
		out["local_key_hex"] = k.Symmetric.ExportHex()
	}
	if k.Secret != nil {
		out["secret_key_hex"] = k.Secret.ExportHex()
	}
	if k.Public != nil {
		out["public_key_hex"] = k.Public.ExportHex()
	}
	return out
}

// NewPasetoManager builds a manager from the authentication config.
func NewPasetoManager(cfg *config.Config) (*Manager, error) {
	p := cfg.Authentication.Paseto

	keys, err := KeysFromConfig(p)
	if err != nil {
		return nil, err
	}

	return New(Config{
		Mode:      keys.Mode,
		Issuer:    p.Issuer,
		Audience:  p.Audience,
		AccessTTL: time.Duration(p.AccessTTLMinutes) * time.Minute,
	}, keys)
}
