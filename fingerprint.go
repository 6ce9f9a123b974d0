package greyfilter

import (
	"crypto/sha256"
	"encoding/base64"
)

const (
	keyPrefix     string = "opensmtpd-filter-qdgrey"
	greySuffix    string = "grey"
	whiteSuffix   string = "white"
	pairSeparator byte   = '\n'
)

// Fingerprint identifies a (sender, recipient) pair without carrying the
// addresses themselves.
type Fingerprint string

// KeyPair holds the decision store record names of one fingerprint.
type KeyPair struct {
	Grey  string
	White string
}

// NewFingerprint hashes sender, a newline and recipient with SHA-256 and
// renders the digest as unpadded URL-safe base64.
func NewFingerprint(sender, recipient []byte) Fingerprint {
	h := sha256.New()
	h.Write(sender)
	h.Write([]byte{pairSeparator})
	h.Write(recipient)
	return Fingerprint(base64.RawURLEncoding.EncodeToString(h.Sum(nil)))
}

// Keys wraps the fingerprint in braces so both records share a cluster
// hash slot.
func (f Fingerprint) Keys() KeyPair {
	tagged := keyPrefix + "{" + string(f) + "}"
	return KeyPair{
		Grey:  tagged + greySuffix,
		White: tagged + whiteSuffix,
	}
}
