package nand

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/moffa90/go-dsmc/dsmc"
)

// Digest is the expected digest of the first-stage bootloader (1SMCBL).
type Digest [dsmc.DigestSize]byte

// String returns the digest as 32 lowercase hex characters.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ExpectedBootloaderDigest asks the library for the expected 1SMCBL digest,
// for out-of-band verification of the flashed image. It issues a single
// native call and is valid once the programmer is initialized.
func (s *Session) ExpectedBootloaderDigest(ctx context.Context) (Digest, error) {
	const op = "get expected 1SMCBL digest"

	var d Digest
	if err := ctx.Err(); err != nil {
		return d, fmt.Errorf("cancelled: %w", err)
	}
	if err := s.require(op, StateInitialized, StateProgramming); err != nil {
		return d, err
	}

	digest := make([]byte, dsmc.DigestSize)
	scratch := make([]byte, dsmc.DigestScratchSize)
	if err := dsmc.Check(op, s.obj.GetExpDigest1SMCBL(digest, scratch)); err != nil {
		return d, err
	}

	copy(d[:], digest)
	s.logDebug("expected 1SMCBL digest", "digest", d.String())
	return d, nil
}
