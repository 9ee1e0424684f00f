package storage

// StateKey is the fixed key the root document is stored under.
const StateKey = "taskpoints_v1"

// KVStore is a synchronous string key-value store. Implementations map
// capacity failures to errors satisfying IsQuotaError so the save ladder
// can distinguish them from fatal conditions.
type KVStore interface {
	// Get returns the stored value and whether the key existed.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}
