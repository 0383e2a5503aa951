package config

import (
	"io/ioutil"
	"log"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/ssh"
)

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()
	if _, err := Initialize(tempDir, log.New(ioutil.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	cfg, err := Load(tempDir)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("CreateRecording", func(t *testing.T) {
		fd, err := cfg.CreateRecording("attacker", time.Date(2021, 7, 4, 12, 0, 0, 0, time.UTC))
		assert.Nil(t, err)
		fd.Close()

		names, err := cfg.ListRecordings()
		assert.Nil(t, err)
		assert.Equal(t, []string{"20210704T120000Z-attacker.cast"}, names)
	})

	t.Run("UserDataFs", func(t *testing.T) {
		fs, err := cfg.UserDataFs("user")
		assert.Nil(t, err)
		assert.Nil(t, afero.WriteFile(fs, "x.json", []byte("{}"), 0600))

		exists, _ := afero.Exists(cfg.DataFs(), "user/x.json")
		assert.True(t, exists)
	})

	t.Run("OpenAppLog", func(t *testing.T) {
		fd, err := cfg.OpenAppLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("OpenEventLog", func(t *testing.T) {
		fd, err := cfg.OpenEventLog()
		assert.Nil(t, err)
		fd.Close()

		fd, err = cfg.ReadEventLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("PrivateKeyPem", func(t *testing.T) {
		keyPem, err := cfg.PrivateKeyPem()
		assert.Nil(t, err)

		signer, err := ssh.ParsePrivateKey(keyPem)
		assert.Nil(t, err)
		assert.Equal(t, ssh.KeyAlgoED25519, signer.PublicKey().Type())
	})
}

func TestInitialize_keepsExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	logger := log.New(ioutil.Discard, "", 0)

	_, err := InitializeFs(fs, logger)
	assert.Nil(t, err)
	firstKey, _ := afero.ReadFile(fs, PrivateKeyName)

	_, err = InitializeFs(fs, logger)
	assert.Nil(t, err)
	secondKey, _ := afero.ReadFile(fs, PrivateKeyName)

	assert.Equal(t, firstKey, secondKey)
}

func TestLoad_invalid(t *testing.T) {
	fs := afero.NewMemMapFs()
	assert.Nil(t, afero.WriteFile(fs, ConfigurationName, []byte("unknown_field: 1\n"), 0600))

	_, err := LoadFs(fs)
	assert.NotNil(t, err)
}

func TestEphemeral(t *testing.T) {
	cfg := Ephemeral()
	assert.Equal(t, "mash", cfg.ShellName)

	fd, err := cfg.CreateRecording("user", time.Now())
	assert.Nil(t, err)
	fd.Close()
}
