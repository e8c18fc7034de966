package mocks

import "github.com/stretchr/testify/mock"

// CredentialVerifier is a mock implementation of model.CredentialVerifier.
type CredentialVerifier struct {
	mock.Mock
}

func (m *CredentialVerifier) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *CredentialVerifier) Verify(password, hash string) bool {
	args := m.Called(password, hash)
	return args.Bool(0)
}
