// Package config resolves configuration keys across layered sources.
//
// Keys are flat and dot separated ("server.port"). A Manager consults, in
// order: runtime overrides, active profiles (last activated first) and
// sources (last added first). Sources include in-memory maps, the process
// environment, command-line arguments and TOML, YAML, Properties or dotenv
// files.
//
//	m := config.NewManager()
//	if err := m.AddConfigFile("config/app.yaml"); err != nil {
//	    return err
//	}
//	m.AddSource(config.NewEnvSource(""))
//	m.AddSource(config.NewArgsSource(os.Args[1:]))
//
//	var server ServerConfig
//	err := config.Bind(m, "server", &server)
package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotenv loads .env files into the process environment without
// overriding variables that are already set. With no arguments it loads
// ".env". Missing files are skipped, since .env is usually absent in
// production; unreadable or malformed files are reported.
//
//	_ = config.LoadDotenv(".env", ".env.local")
//	m.AddSource(config.NewEnvSource(""))
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		present = append(present, f)
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return newError(ErrKindFile, present[0], "load dotenv", err)
	}
	return nil
}
