package stratify

import (
	"crypto/sha256"
	"encoding/binary"
	"strconv"

	"lukechampine.com/frand"
)

const (
	rngBufSize = 1024
	rngRounds  = 12
)

// Seed is an opaque value that determines every pseudorandom choice.
// Equal seeds produce equal samples.
type Seed string

// Int64Seed renders an integer seed in base 10.
func Int64Seed(n int64) Seed {
	return Seed(strconv.FormatInt(n, 10))
}

// String returns the seed text.
func (s Seed) String() string { return string(s) }

// globalSource returns the stream used for the final ordering shuffle.
func (s Seed) globalSource() *frand.RNG {
	key := sha256.Sum256([]byte(s))
	return frand.NewCustom(key[:], rngBufSize, rngRounds)
}

// groupSource returns the stream used to draw records from group.
// It depends only on the seed and the group name.
func (s Seed) groupSource(group string) *frand.RNG {
	key := sha256.Sum256(groupKey(s, group))
	return frand.NewCustom(key[:], rngBufSize, rngRounds)
}

// groupKey encodes (seed, group) as len(seed) || seed || group, so distinct
// pairs never share a key even when either part contains a separator.
func groupKey(s Seed, group string) []byte {
	b := make([]byte, 0, binary.MaxVarintLen64+len(s)+len(group))
	b = binary.AppendUvarint(b, uint64(len(s)))
	b = append(b, s...)
	return append(b, group...)
}
