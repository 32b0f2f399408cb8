package secondary

import "context"

// PatchSlotRepository defines the secondary port for the three durable patch buckets.
// Payloads are opaque to the repository.
type PatchSlotRepository interface {
	// Load returns the stored payload, or found=false when the slot was never written.
	Load(ctx context.Context, slot string) (payload []byte, found bool, err error)

	// Save replaces the slot payload.
	Save(ctx context.Context, slot string, payload []byte) error
}
