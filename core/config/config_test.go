package config

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := defaultConfig()
	assert.NotNil(t, cfg)
	assert.Nil(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		mutate  func(c *Configuration)
		wantErr string
	}{
		"default": {
			mutate: func(c *Configuration) {},
		},
		"bad hostname": {
			mutate:  func(c *Configuration) { c.Hostname = "not a host" },
			wantErr: "hostname",
		},
		"relative home": {
			mutate:  func(c *Configuration) { c.Home = "home/user" },
			wantErr: "home",
		},
		"port out of range": {
			mutate:  func(c *Configuration) { c.SSHPort = 70000 },
			wantErr: "ssh_port",
		},
		"zero alias depth": {
			mutate:  func(c *Configuration) { c.MaxAliasDepth = 0 },
			wantErr: "max_alias_depth",
		},
		"duplicate passwords": {
			mutate:  func(c *Configuration) { c.Passwords = []string{"a", "a"} },
			wantErr: "passwords",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.Nil(t, err)
				return
			}
			if assert.NotNil(t, err) {
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	cfg := defaultConfig()
	cfg.Passwords = []string{"secret"}

	assert.True(t, cfg.CheckPassword("secret"))
	assert.False(t, cfg.CheckPassword("guess"))

	cfg.AllowAnyPassword = true
	assert.True(t, cfg.CheckPassword("guess"))
}

func TestUtsname(t *testing.T) {
	u := defaultConfig().Uname.Utsname("box")
	assert.Equal(t, "box", u.Nodename)
	assert.Equal(t, "MASH", u.Sysname)
	assert.Equal(t, "Mash/1.0", u.OperatingSystem)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "alice", sanitizeName("alice"))
	assert.Equal(t, "___etc", sanitizeName("../etc"))
	assert.Equal(t, "_", sanitizeName(""))
}
