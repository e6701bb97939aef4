package kv

// Store is the persisted key-value contract the tracking core writes through.
// Values are opaque JSON. Get reports absence explicitly: a missing key is
// (nil, false, nil), not an error.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

// Keys used by the tracking core.
const (
	KeyEntries   = "tempo.entries"
	KeyProjects  = "tempo.projects"
	KeyTimer     = "tempo.timer"
	KeyIDCounter = "tempo.idCounter"
)
