package vfs

// Meta is the session state persisted next to the filesystem under MetaKey.
type Meta struct {
	Cwd     string            `json:"cwd"`
	Env     map[string]string `json:"env"`
	Aliases map[string]string `json:"aliases"`
	History []string          `json:"history"`
}
