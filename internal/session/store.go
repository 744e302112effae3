package session

// Storage keys shared by the stores. The durable store additionally holds
// friendship_<userID> advisory flags written by the friends layer.
const (
	KeyToken  = "token"
	KeyUserID = "user_id"
)

// Store is a flat string key-value store. The durable implementation survives
// process restarts; the ephemeral one is scoped to the running process, the
// way a browser tab scopes sessionStorage.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
