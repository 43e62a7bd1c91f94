package commands

import (
	"fmt"
	"io"

	webhookService "github.com/nazarli-shabnam/subscription-tracker/internal/webhook/service"
)

// RunSignPayload prints the signature a receiver should expect for payload, the
// compacted data field of a delivery. When payload is empty it is read from the
// reader, byte for byte.
func RunSignPayload(signer webhookService.Signer, stdio IOTuple, secret, payload string) error {
	if secret == "" {
		return fmt.Errorf("secret is required")
	}

	body := []byte(payload)
	if payload == "" {
		var err error
		body, err = io.ReadAll(stdio.Reader)
		if err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}
	}

	_, err := fmt.Fprintln(stdio.Writer, signer.Sign(secret, body))
	return err
}
