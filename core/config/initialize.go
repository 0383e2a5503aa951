package config

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Initialize creates a configuration directory at dir with the default
// config, a fresh host key and empty data directories. Existing files are
// left alone.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return InitializeFs(afero.NewBasePathFs(afero.NewOsFs(), dir), logger)
}

// InitializeFs is Initialize on an arbitrary filesystem.
func InitializeFs(fs afero.Fs, logger *log.Logger) (*Configuration, error) {
	for _, dir := range []string{DataDirName, RecordingsDirName} {
		logger.Printf("Creating %s/\n", dir)
		if err := fs.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	if err := writeIfMissing(fs, logger, ConfigurationName, 0600, func() ([]byte, error) {
		return defaultConfigData, nil
	}); err != nil {
		return nil, err
	}

	if err := writeIfMissing(fs, logger, PrivateKeyName, 0600, generateHostKey); err != nil {
		return nil, err
	}

	return LoadFs(fs)
}

func writeIfMissing(fs afero.Fs, logger *log.Logger, name string, perm os.FileMode, contents func() ([]byte, error)) error {
	switch _, err := fs.Stat(name); {
	case err == nil:
		logger.Printf("Keeping existing %s\n", name)
		return nil
	case !os.IsNotExist(err):
		return err
	}

	data, err := contents()
	if err != nil {
		return fmt.Errorf("generating %s: %w", name, err)
	}
	logger.Printf("Writing %s\n", filepath.ToSlash(name))
	return afero.WriteFile(fs, name, data, perm)
}

// generateHostKey creates an ed25519 key as a PKCS#8 PEM block.
func generateHostKey() ([]byte, error) {
	_, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	der, err := x509.MarshalPKCS8PrivateKey(private)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}
