package source

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns the hex blake2b-256 digest of the decoded content at
// uri, so runs can record exactly which association table they used.
func (o *Opener) Fingerprint(ctx context.Context, uri string) (string, error) {
	rc, err := o.Open(ctx, uri)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, rc); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", uri, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
