// Package enginerr defines the sentinel error kinds the fingerprint engine
// surfaces across its component boundaries (the front end and the index,
// per the propagation policy in the engine's error-handling design).
package enginerr

import "errors"

var (
	// ErrDecodeFailure means the input bytes could not be turned into PCM.
	// Wrapped by audio.Decode. Recovery: skip the file, keep indexing.
	ErrDecodeFailure = errors.New("acousticdna: decode failure")

	// ErrEmptyFingerprint means the input was too short or too quiet to
	// yield any peaks or hashes. Not an operator-visible error: callers
	// treat it as "no fingerprint". The peak and hash stages report this
	// case as empty slices; no function in this module returns this error.
	ErrEmptyFingerprint = errors.New("acousticdna: empty fingerprint")

	// ErrDuplicateTrack means add_track was called with a track_id already
	// present in the index. Caller decides: ignore, or Forget then retry.
	ErrDuplicateTrack = errors.New("acousticdna: duplicate track")

	// ErrUnknownTrack means Forget/GetTrack was called with an id not in
	// the store. Treated as an idempotent no-op by Forget.
	ErrUnknownTrack = errors.New("acousticdna: unknown track")

	// ErrCorruptIndex means an on-disk invariant was violated. Fatal;
	// surfaced to the operator rather than recovered from.
	ErrCorruptIndex = errors.New("acousticdna: corrupt index")

	// ErrResourceExhausted means the index ran out of memory or storage
	// quota while committing a track. Caller retries with lower concurrency.
	ErrResourceExhausted = errors.New("acousticdna: resource exhausted")
)
