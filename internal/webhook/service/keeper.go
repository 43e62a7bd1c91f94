package service

import (
	"context"
	"encoding/base64"

	"gocloud.dev/secrets"

	apperrors "github.com/nazarli-shabnam/subscription-tracker/internal/errors"

	// Register KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// SecretKeeper protects webhook secrets at rest.
type SecretKeeper interface {
	// Seal encrypts a plain secret into its stored form.
	Seal(ctx context.Context, plain string) (string, error)
	// Open recovers the plain secret from its stored form.
	Open(ctx context.Context, sealed string) (string, error)
	Close() error
}

// OpenSecretKeeper opens a keeper for keyURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
// An empty keyURI stores secrets unencrypted.
func OpenSecretKeeper(ctx context.Context, keyURI string) (SecretKeeper, error) {
	if keyURI == "" {
		return plainKeeper{}, nil
	}
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open secret keeper")
	}
	return &kmsKeeper{keeper: keeper}, nil
}

// kmsKeeper stores secrets as base64 ciphertext produced by a gocloud keeper.
type kmsKeeper struct {
	keeper *secrets.Keeper
}

func (k *kmsKeeper) Seal(ctx context.Context, plain string) (string, error) {
	ciphertext, err := k.keeper.Encrypt(ctx, []byte(plain))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to seal webhook secret")
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (k *kmsKeeper) Open(ctx context.Context, sealed string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to decode sealed webhook secret")
	}
	plain, err := k.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to open webhook secret")
	}
	return string(plain), nil
}

func (k *kmsKeeper) Close() error {
	return k.keeper.Close()
}

type plainKeeper struct{}

func (plainKeeper) Seal(_ context.Context, plain string) (string, error) { return plain, nil }

func (plainKeeper) Open(_ context.Context, sealed string) (string, error) { return sealed, nil }

func (plainKeeper) Close() error { return nil }
