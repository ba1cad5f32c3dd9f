package remote

import (
	"context"

	"fdms-kiosk-backend/internal/domain"
)

// The FDMS backend is the system of record for asset movements; the kiosk
// holds no state of its own beyond session strings. Every call returns the
// raw response Envelope so callers normalize through EnsureSuccess/Content
// at the workflow boundary. Transport failures come back as plain errors; a
// caller-initiated abort is identifiable with errors.Is(err,
// context.Canceled).

type SettingsAPI interface {
	Get(ctx context.Context) (*Envelope, error)
}

type AdminAPI interface {
	Login(ctx context.Context, password string) (*Envelope, error)
}

type AssetMovementAPI interface {
	List(ctx context.Context) (*Envelope, error)
	Checkout(ctx context.Context, record *domain.AssetMovementRecord) (*Envelope, error)
	Return(ctx context.Context, id string, ret *domain.ReturnRecord) (*Envelope, error)
}

type MovementReasonAPI interface {
	List(ctx context.Context) (*Envelope, error)
}
