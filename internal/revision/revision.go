package revision

import (
	"encoding/binary"

	"github.com/oklog/ulid/v2"

	"github.com/weegigs/wee-counter-go/we"
)

// Encode packs a stream sequence and the index of an action within its change
// set into the entropy of a ulid, keeping revisions ordered by sequence.
func Encode(timestamp uint64, sequence uint64, index uint16) (we.Revision, error) {
	r := &ulid.ULID{}
	if err := r.SetTime(timestamp); err != nil {
		return "", err
	}

	entropy := make([]byte, 10)
	binary.BigEndian.PutUint64(entropy[:8], sequence)
	binary.BigEndian.PutUint16(entropy[8:], index)

	if err := r.SetEntropy(entropy); err != nil {
		return "", err
	}

	return we.Revision(r.String()), nil
}

func DecodeSequenceNumber(revision we.Revision) (uint64, error) {
	parsed, err := ulid.Parse(revision.String())
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint64(parsed.Entropy()[:8]), nil
}
