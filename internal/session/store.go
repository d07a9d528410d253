package session

// Persisted keys. The three are written together at login and removed
// together at logout or when bootstrap finds them incomplete.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// Store is the durable per-browser key-value storage backing a session.
type Store interface {
	Set(key, value string)
	Lookup(key string) (string, bool)
	Delete(key string)
}

// Clear removes every persisted session key from store.
func Clear(store Store) {
	store.Delete(KeyAccessToken)
	store.Delete(KeyRefreshToken)
	store.Delete(KeyUser)
}
