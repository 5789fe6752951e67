package hash

// Hash produces and checks digests of plaintext values.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}
