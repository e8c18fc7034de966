package keys

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dtroode/auth-service/internal/logger"
	"github.com/dtroode/auth-service/internal/model"
)

// Source yields PEM encoded private key material.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
	Name() string
}

// FileSource reads the key from a file on disk.
type FileSource struct {
	Path string
}

func (s FileSource) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return data, nil
}

func (s FileSource) Name() string { return "file " + s.Path }

// PEMSource holds the key inline, e.g. from an environment variable.
type PEMSource struct {
	PEM []byte
}

func (s PEMSource) Load(_ context.Context) ([]byte, error) {
	if len(s.PEM) == 0 {
		return nil, errors.New("inline key is empty")
	}
	return s.PEM, nil
}

func (s PEMSource) Name() string { return "inline pem" }

// ObjectSource downloads the key from object storage. When Generate is set and
// the object is missing, a fresh key is generated and uploaded so that every
// replica ends up signing with the same key.
type ObjectSource struct {
	Storage  model.ObjectStore
	Key      string
	Generate bool
	Bits     int
	Logger   *logger.Logger
}

func (s ObjectSource) Load(ctx context.Context) ([]byte, error) {
	exists, err := s.Storage.Exists(ctx, s.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to check key object: %w", err)
	}

	if !exists {
		if !s.Generate {
			return nil, fmt.Errorf("key object %q does not exist", s.Key)
		}
		return s.generate(ctx)
	}

	rc, err := s.Storage.Download(ctx, s.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to download key object: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read key object: %w", err)
	}
	return data, nil
}

func (s ObjectSource) generate(ctx context.Context) ([]byte, error) {
	bits := s.Bits
	if bits == 0 {
		bits = DefaultKeyBits
	}

	data, err := GeneratePEM(bits)
	if err != nil {
		return nil, err
	}
	if err := s.Storage.Upload(ctx, s.Key, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to upload generated key: %w", err)
	}

	if s.Logger != nil {
		s.Logger.Info("Keys: generated new signing key", "object", s.Key, "bits", bits)
	}
	return data, nil
}

func (s ObjectSource) Name() string { return "object " + s.Key }
