package pgadapt

import (
	"reflect"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/text/encoding"
)

// Scope is a context that carries its own registry. A nil Scope is the global scope of a Map.
type Scope interface {
	Registry() *Registry
}

// Connection is a connection level scope. Conversions constructed for a Transformer bound to a connection (or to one
// of its cursors) receive it so they can depend on the client encoding and server version.
type Connection interface {
	Scope

	// ClientEncoding returns the codec for the connection's client_encoding. It must not return nil.
	ClientEncoding() encoding.Encoding

	// ServerVersion returns the version of the server or nil if it is not known.
	ServerVersion() *semver.Version
}

// Cursor is a cursor level scope. It always belongs to a connection.
type Cursor interface {
	Scope
	Connection() Connection
}

func isNilScope(scope Scope) bool {
	if scope == nil {
		return true
	}
	v := reflect.ValueOf(scope)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// solveScope determines the connection and cursor a scope refers to.
func solveScope(scope Scope) (Connection, Cursor, error) {
	if isNilScope(scope) {
		return nil, nil, nil
	}

	switch s := scope.(type) {
	case Cursor:
		return s.Connection(), s, nil
	case Connection:
		return s, nil, nil
	default:
		return nil, nil, &ConfigError{Op: "solve scope", Scope: scopeName(scope), Msg: "the scope should be a connection or cursor"}
	}
}

// ConnScope is a Connection implementation holding the adaptation state of one database connection.
type ConnScope struct {
	registry      *Registry
	encodingName  string
	encoding      encoding.Encoding
	serverVersion *semver.Version
	params        map[string]string
}

// NewConnScope creates a connection scope from config. A nil config is equivalent to ParseConfig("").
func NewConnScope(config *Config) (*ConnScope, error) {
	if config == nil {
		var err error
		config, err = ParseConfig("")
		if err != nil {
			return nil, err
		}
	}

	cs := &ConnScope{
		registry:      NewRegistry(),
		serverVersion: config.ServerVersion,
		params:        make(map[string]string, len(config.RuntimeParams)+2),
	}
	for k, v := range config.RuntimeParams {
		cs.params[k] = v
	}

	if err := cs.SetParameter("client_encoding", config.ClientEncoding); err != nil {
		return nil, err
	}

	return cs, nil
}

func (cs *ConnScope) Registry() *Registry {
	return cs.registry
}

func (cs *ConnScope) ClientEncoding() encoding.Encoding {
	return cs.encoding
}

// ClientEncodingName returns the normalized PostgreSQL name of the client encoding, e.g. "UTF8".
func (cs *ConnScope) ClientEncodingName() string {
	return cs.encodingName
}

func (cs *ConnScope) ServerVersion() *semver.Version {
	return cs.serverVersion
}

// Parameter returns the last value reported for a run-time parameter.
func (cs *ConnScope) Parameter(name string) string {
	return cs.params[name]
}

// SetParameter records a run-time parameter as reported by the server in a ParameterStatus message.
// client_encoding and server_version also change the codec and version handed to conversions constructed afterwards.
// Transformers that already resolved their conversions keep the old values.
//
// The raw value is recorded even when it cannot be applied. In that case the previous codec or version stays in effect
// and a *ConfigError is returned.
func (cs *ConnScope) SetParameter(name, value string) error {
	cs.params[name] = value

	switch name {
	case "client_encoding":
		enc, err := EncodingForName(value)
		if err != nil {
			return err
		}
		cs.encoding = enc
		cs.encodingName = normalizeEncodingName(value)
	case "server_version":
		v, err := parseServerVersion(value)
		if err != nil {
			return err
		}
		cs.serverVersion = v
	}

	return nil
}

// NewCursor returns a new cursor scope belonging to cs.
func (cs *ConnScope) NewCursor() *CursorScope {
	return &CursorScope{registry: NewRegistry(), conn: cs}
}

// CursorScope is a Cursor implementation. Registrations into it only affect Transformers bound to the cursor.
type CursorScope struct {
	registry *Registry
	conn     *ConnScope
}

func (cs *CursorScope) Registry() *Registry {
	return cs.registry
}

func (cs *CursorScope) Connection() Connection {
	return cs.conn
}

// parseServerVersion parses server_version values such as "14.2", "9.6.24" or "15.1 (Debian 15.1-1.pgdg110+1)".
func parseServerVersion(s string) (*semver.Version, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " ("); i >= 0 {
		s = s[:i]
	}
	// Development and beta versions ("16devel", "15beta2") carry no separator before the tag.
	if i := strings.IndexFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' }); i > 0 {
		s = s[:i]
	}

	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, &ConfigError{Op: "parse server_version", Msg: err.Error()}
	}
	return v, nil
}
