package pgadapt

import (
	"fmt"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/jackc/pgservicefile"
)

// Config holds the connection level settings that influence adaptation. It must be created by ParseConfig.
type Config struct {
	// ClientEncoding is the PostgreSQL name of the client encoding, e.g. "UTF8".
	ClientEncoding string

	// ServerVersion is the server version if known from the connection string. Usually it is learned later from the
	// server_version ParameterStatus message.
	ServerVersion *semver.Version

	// RuntimeParams are all other settings. They are reported by ConnScope.Parameter.
	RuntimeParams map[string]string
}

// ParseConfigError is returned by ParseConfig when the connection string or the service file cannot be used.
type ParseConfigError struct {
	ConnString string // The connection string that could not be parsed.
	msg        string
	err        error
}

func (e *ParseConfigError) Error() string {
	connString := redactPW(e.ConnString)
	if e.err == nil {
		return fmt.Sprintf("cannot parse `%s`: %s", connString, e.msg)
	}
	return fmt.Sprintf("cannot parse `%s`: %s (%s)", connString, e.msg, e.err.Error())
}

func (e *ParseConfigError) Unwrap() error {
	return e.err
}

// ParseConfig builds a Config from a connection string in keyword/value form
//
//	client_encoding=LATIN1 server_version=15.2 application_name=report
//
// or in URL form
//
//	postgres://jack@localhost/mydb?client_encoding=WIN1252
//
// Settings are merged in increasing precedence from the defaults, the environment (PGCLIENTENCODING, PGAPPNAME,
// PGSERVICE, PGSERVICEFILE), the service file section named by "service", and the connection string itself.
// Connection parameters that only concern connection establishment (host, user, password...) are kept in
// RuntimeParams untouched.
func ParseConfig(connString string) (*Config, error) {
	defaultSettings := defaultSettings()
	envSettings := parseEnvSettings()

	connStringSettings := make(map[string]string)
	if connString != "" {
		var err error
		if strings.HasPrefix(connString, "postgres://") || strings.HasPrefix(connString, "postgresql://") {
			connStringSettings, err = parseURLSettings(connString)
			if err != nil {
				return nil, &ParseConfigError{ConnString: connString, msg: "failed to parse as URL", err: err}
			}
		} else {
			connStringSettings = parseDSNSettings(connString)
		}
	}

	settings := mergeSettings(defaultSettings, envSettings, connStringSettings)
	if service, present := settings["service"]; present {
		serviceSettings, err := parseServiceSettings(settings["servicefile"], service)
		if err != nil {
			return nil, &ParseConfigError{ConnString: connString, msg: "failed to read service", err: err}
		}

		settings = mergeSettings(defaultSettings, envSettings, serviceSettings, connStringSettings)
	}

	if _, err := EncodingForName(settings["client_encoding"]); err != nil {
		return nil, &ParseConfigError{ConnString: connString, msg: "invalid client_encoding", err: err}
	}

	config := &Config{
		ClientEncoding: normalizeEncodingName(settings["client_encoding"]),
		RuntimeParams:  make(map[string]string),
	}

	if s, present := settings["server_version"]; present {
		v, err := parseServerVersion(s)
		if err != nil {
			return nil, &ParseConfigError{ConnString: connString, msg: "invalid server_version", err: err}
		}
		config.ServerVersion = v
	}

	notRuntimeParams := map[string]struct{}{
		"client_encoding": {},
		"server_version":  {},
		"service":         {},
		"servicefile":     {},
	}

	for k, v := range settings {
		if _, present := notRuntimeParams[k]; present {
			continue
		}
		config.RuntimeParams[k] = v
	}

	return config, nil
}

func mergeSettings(settingSets ...map[string]string) map[string]string {
	settings := make(map[string]string)

	for _, s2 := range settingSets {
		for k, v := range s2 {
			settings[k] = v
		}
	}

	return settings
}

func defaultSettings() map[string]string {
	settings := make(map[string]string)

	settings["client_encoding"] = "UTF8"

	// Purposely ignoring err getting the user. Without a home directory there is simply no default service file.
	user, err := user.Current()
	if err == nil {
		settings["servicefile"] = filepath.Join(user.HomeDir, ".pg_service.conf")
	}

	return settings
}

func parseEnvSettings() map[string]string {
	settings := make(map[string]string)

	nameMap := map[string]string{
		"PGCLIENTENCODING": "client_encoding",
		"PGAPPNAME":        "application_name",
		"PGSERVICE":        "service",
		"PGSERVICEFILE":    "servicefile",
	}

	for envname, realname := range nameMap {
		value := os.Getenv(envname)
		if value != "" {
			settings[realname] = value
		}
	}

	return settings
}

func parseURLSettings(connString string) (map[string]string, error) {
	settings := make(map[string]string)

	u, err := url.Parse(connString)
	if err != nil {
		return nil, err
	}

	if u.User != nil {
		settings["user"] = u.User.Username()
		if password, present := u.User.Password(); present {
			settings["password"] = password
		}
	}

	if u.Host != "" {
		settings["host"] = u.Host
	}

	database := strings.TrimLeft(u.Path, "/")
	if database != "" {
		settings["database"] = database
	}

	for k, v := range u.Query() {
		settings[k] = v[0]
	}

	return settings, nil
}

var dsnRegexp = regexp.MustCompile(`([a-zA-Z_]+)=((?:"[^"]+")|(?:'[^']+')|(?:[^ ]+))`)

func parseDSNSettings(s string) map[string]string {
	settings := make(map[string]string)

	for _, b := range dsnRegexp.FindAllStringSubmatch(s, -1) {
		v := b[2]
		if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
			v = v[1 : len(v)-1]
		}
		settings[b[1]] = v
	}

	return settings
}

func parseServiceSettings(servicefilePath, serviceName string) (map[string]string, error) {
	servicefile, err := pgservicefile.ReadServicefile(servicefilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read service file: %v", servicefilePath)
	}

	service, err := servicefile.GetService(serviceName)
	if err != nil {
		return nil, fmt.Errorf("unable to find service: %v", serviceName)
	}

	nameMap := map[string]string{
		"dbname": "database",
	}

	settings := make(map[string]string, len(service.Settings))
	for k, v := range service.Settings {
		if k2, present := nameMap[k]; present {
			k = k2
		}
		settings[k] = v
	}

	return settings, nil
}

func redactPW(connString string) string {
	if strings.HasPrefix(connString, "postgres://") || strings.HasPrefix(connString, "postgresql://") {
		if u, err := url.Parse(connString); err == nil {
			return u.Redacted()
		}
	}
	quotedDSN := regexp.MustCompile(`password='[^']*'`)
	connString = quotedDSN.ReplaceAllLiteralString(connString, "password=xxxxx")
	plainDSN := regexp.MustCompile(`password=[^ ]*`)
	return plainDSN.ReplaceAllLiteralString(connString, "password=xxxxx")
}
