// Package biometric gates the one-tap re-login behind a local user check.
//
// The Gate holds no credentials and makes no network calls: it only answers
// "is a check possible" and "did the check pass". What happens afterwards
// is up to the caller.
package biometric

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/madrasati/internal/logging"
)

// Kind is the modality shown to the parent.
type Kind string

const (
	KindFace        Kind = "face"
	KindFingerprint Kind = "fingerprint"
	KindIris        Kind = "iris"
	KindNone        Kind = "none"
)

// priority is the order in which supported modalities are picked.
var priority = []Kind{KindFace, KindFingerprint, KindIris}

// ParseKind maps a configured name to a Kind; unknown names give KindNone.
func ParseKind(s string) Kind {
	for _, k := range priority {
		if string(k) == s {
			return k
		}
	}
	return KindNone
}

// Capability is recomputed every time it is asked for, since enrolment can
// change between launches.
type Capability struct {
	Available bool
	Kind      Kind
}

// Reason explains a failed check.
type Reason string

const (
	ReasonUserCancel Reason = "user_cancel"
	ReasonFallback   Reason = "fallback"
	ReasonLockout    Reason = "lockout"
	ReasonMismatch   Reason = "mismatch"
)

// Result of one authentication attempt. Reason is empty on success.
type Result struct {
	Success bool
	Reason  Reason
}

// Prompt carries the (already translated) texts shown during a check.
type Prompt struct {
	Message  string
	Fallback string
	Cancel   string
}

// Device is the platform authenticator.
type Device interface {
	HasHardware(ctx context.Context) (bool, error)
	IsEnrolled(ctx context.Context) (bool, error)
	SupportedTypes(ctx context.Context) ([]Kind, error)
	Authenticate(ctx context.Context, p Prompt) (Result, error)
}

// ErrUnavailable is returned by Gate.Authenticate when the device has no
// hardware or nothing enrolled.
var ErrUnavailable = errors.New("biometric authentication unavailable")

type Gate struct {
	device Device
	log    logging.Logger
}

func NewGate(d Device, log logging.Logger) *Gate {
	return &Gate{device: d, log: log}
}

// CheckAvailability queries hardware, then enrolment, then the supported
// modalities. Any device error counts as unavailable.
func (g *Gate) CheckAvailability(ctx context.Context) Capability {
	none := Capability{Kind: KindNone}

	hw, err := g.device.HasHardware(ctx)
	if err != nil {
		g.log.Warn(ctx, "biometric hardware probe failed", "error", err)
		return none
	}
	if !hw {
		return none
	}

	enrolled, err := g.device.IsEnrolled(ctx)
	if err != nil {
		g.log.Warn(ctx, "biometric enrolment probe failed", "error", err)
		return none
	}
	if !enrolled {
		return none
	}

	types, err := g.device.SupportedTypes(ctx)
	if err != nil {
		g.log.Warn(ctx, "biometric type probe failed", "error", err)
		return none
	}
	return Capability{Available: true, Kind: pick(types)}
}

// Authenticate runs one check with the given texts.
func (g *Gate) Authenticate(ctx context.Context, prompt, fallback, cancel string) (Result, error) {
	if !g.CheckAvailability(ctx).Available {
		return Result{}, ErrUnavailable
	}

	res, err := g.device.Authenticate(ctx, Prompt{Message: prompt, Fallback: fallback, Cancel: cancel})
	if err != nil {
		return Result{}, err
	}
	g.log.Debug(ctx, "biometric check finished", "success", res.Success, "reason", res.Reason)
	return res, nil
}

// pick returns the highest-priority supported kind. Enrolled hardware that
// reports no known modality is still usable and shows as KindNone.
func pick(types []Kind) Kind {
	for _, want := range priority {
		for _, have := range types {
			if have == want {
				return want
			}
		}
	}
	return KindNone
}
