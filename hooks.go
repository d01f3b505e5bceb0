package cachepolicy

// MissReason tells why a Client lookup produced no value.
type MissReason string

const (
	MissBadKey   MissReason = "bad key"
	MissNotFound MissReason = "not found"
	MissExpired  MissReason = "expired"
)

// Hooks receive the Client's observable signals.
// Implementations MUST be cheap and non-blocking; they run on the read path.
// Wrap slow sinks with hooks/async.
type Hooks interface {
	// Every Get, before any validation.
	Get(key Key)

	// A fresh record was returned.
	Hit(key Key, view CachedView[[]byte])

	// Nothing usable was found. rec is set only for MissExpired.
	Miss(key Key, reason MissReason, rec *StoredRecord)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Get(Key)                             {}
func (NopHooks) Hit(Key, CachedView[[]byte])         {}
func (NopHooks) Miss(Key, MissReason, *StoredRecord) {}
