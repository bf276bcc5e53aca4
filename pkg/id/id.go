package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID string stamped with the current time.
//
// ULIDs sort lexicographically by creation time, so trades, rules and
// checks come back from the store in insertion order without an extra index.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a ULID stamped with t. Imported trades use their entry time
// so that IDs of a backfilled history still sort chronologically.
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	if t.IsZero() || t.Before(time.Unix(0, 0)) {
		t = time.Now()
	}
	id, err := ulid.New(ulid.Timestamp(t.UTC()), mono)
	if err != nil {
		panic(err)
	}
	return id.String()
}

