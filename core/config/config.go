package config

import (
	"crypto/subtle"
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/josephlewis42/mathshell/core/vos"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	DataDirName       = "data"
	RecordingsDirName = "recordings"
	PrivateKeyName    = "private_key"
	AppLogName        = "app.log"
	EventLogName      = "events.log"
)

type Configuration struct {
	configFs afero.Fs

	ShellName string `json:"shell_name" validate:"required,alphanum"`
	Hostname  string `json:"hostname" validate:"required,hostname_rfc1123"`
	User      string `json:"user" validate:"required,alphanum"`
	Home      string `json:"home" validate:"required,startswith=/"`
	Motd      string `json:"motd"`

	HistorySize            int     `json:"history_size" validate:"gte=0"`
	MaxAliasDepth          int     `json:"max_alias_depth" validate:"gte=1,lte=256"`
	PersistWritesPerSecond float64 `json:"persist_writes_per_second" validate:"gte=0"`
	RecordSessions         bool    `json:"record_sessions"`

	SSHPort          int      `json:"ssh_port" validate:"gte=0,lte=65535"`
	AllowAnyPassword bool     `json:"allow_any_password"`
	Passwords        []string `json:"passwords" validate:"unique"`

	Uname Uname `json:"uname"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Uname is reported by the uname command, empty fields fall back to the
// shell's defaults.
type Uname struct {
	KernelName      string `json:"kernel_name"`      // Kernel name e.g. "MASH".
	KernelRelease   string `json:"kernel_release"`   // Release e.g. "1.0.0".
	KernelVersion   string `json:"kernel_version"`   // Version e.g. "#1 MASH".
	Machine         string `json:"machine"`          // Machine name e.g. "wasm32".
	Processor       string `json:"processor"`        // Processor type e.g. "wasm32".
	OperatingSystem string `json:"operating_system"` // Operating system e.g. "Mash/1.0".
}

// Utsname converts the configuration into the value commands see, the
// node name is always the configured hostname.
func (u Uname) Utsname(hostname string) vos.Utsname {
	return vos.Utsname{
		Sysname:         u.KernelName,
		Nodename:        hostname,
		Release:         u.KernelRelease,
		Version:         u.KernelVersion,
		Machine:         u.Machine,
		Processor:       u.Processor,
		OperatingSystem: u.OperatingSystem,
	}
}

func (c *Configuration) fs() afero.Fs {
	return c.configFs
}

// DataFs returns the directory holding persisted per-user filesystems.
func (c *Configuration) DataFs() afero.Fs {
	return afero.NewBasePathFs(c.fs(), DataDirName)
}

// UserDataFs returns the directory holding the persisted filesystem of a
// single user, creating it if needed.
func (c *Configuration) UserDataFs(username string) (afero.Fs, error) {
	dir := sanitizeName(username)
	if err := c.DataFs().MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return afero.NewBasePathFs(c.DataFs(), dir), nil
}

// CreateRecording creates a session recording file for the given user.
func (c *Configuration) CreateRecording(username string, start time.Time) (afero.File, error) {
	name := start.UTC().Format("20060102T150405Z") + "-" + sanitizeName(username) + ".cast"
	return c.fs().Create(filepath.Join(RecordingsDirName, name))
}

// ListRecordings returns the names of recordings in the recordings
// directory.
func (c *Configuration) ListRecordings() ([]string, error) {
	infos, err := afero.ReadDir(c.fs(), RecordingsDirName)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, info := range infos {
		if !info.IsDir() && strings.HasSuffix(info.Name(), ".cast") {
			out = append(out, info.Name())
		}
	}
	return out, nil
}

// OpenRecording opens a recording by name.
func (c *Configuration) OpenRecording(name string) (afero.File, error) {
	return c.fs().Open(filepath.Join(RecordingsDirName, filepath.Base(name)))
}

// PrivateKeyPem returns the bytes of the private key.
func (c *Configuration) PrivateKeyPem() ([]byte, error) {
	return afero.ReadFile(c.fs(), PrivateKeyName)
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// OpenEventLog opens the structured event log in an append only state.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	return c.fs().OpenFile(EventLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the structured event log for reading.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	return c.fs().OpenFile(EventLogName, os.O_RDONLY, 0600)
}

// CheckPassword reports whether password is accepted for logins.
func (c *Configuration) CheckPassword(password string) bool {
	if c.AllowAnyPassword {
		return true
	}
	ok := false
	for _, p := range c.Passwords {
		if subtle.ConstantTimeCompare([]byte(p), []byte(password)) == 1 {
			ok = true
		}
	}
	return ok
}

func sanitizeName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
