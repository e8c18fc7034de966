package model

// CredentialVerifier hashes and checks passwords.
type CredentialVerifier interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}
