package dimension

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/json"
)

// CanonicalJSON returns the canonical serialization of s: object keys
// sorted, no whitespace, single-element value lists normalized to the
// bare string, matching the JSON encoding task_request.properties.dimensions
// is hashed from upstream.
func CanonicalJSON(s Set) []byte {
	normalized := make(map[string]interface{}, len(s))
	for k, v := range s {
		if v.Single() {
			normalized[k] = v[0]
		} else {
			normalized[k] = []string(v)
		}
	}
	// encoding/json sorts map keys alphabetically and emits no
	// insignificant whitespace by default, which is exactly the
	// canonical form the hash is defined over.
	buf, err := json.Marshal(normalized)
	if err != nil {
		// Set only ever holds strings; Marshal cannot fail.
		panic(err)
	}
	return buf
}

// Hash returns the 32-bit fingerprint of raw, the canonical encoding of a
// dimension set: the first four bytes of its MD5 digest, read
// little-endian. Preserved byte-for-byte from the original implementation
// so that any pre-existing stored hash remains comparable.
func Hash(raw []byte) uint32 {
	digest := md5.Sum(raw)
	return binary.LittleEndian.Uint32(digest[:4])
}

// HashSet is a convenience wrapper: canonically encode s, then hash it.
func HashSet(s Set) uint32 {
	return Hash(CanonicalJSON(s))
}
