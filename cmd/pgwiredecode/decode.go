package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"
	"github.com/tim-schilling/pgadapt"
	apdnumeric "github.com/tim-schilling/pgadapt/ext/apd-numeric"
	uuid "github.com/tim-schilling/pgadapt/ext/gofrs-uuid"
	"github.com/tim-schilling/pgadapt/ext/postgis"
	numeric "github.com/tim-schilling/pgadapt/ext/shopspring-numeric"
	"github.com/tim-schilling/pgadapt/log/zapadapter"
	"github.com/tim-schilling/pgadapt/pgresult"
	"github.com/tim-schilling/pgadapt/pgxcodec"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var extensions = map[string]func(*pgadapt.Map, pgadapt.Scope) error{
	"gofrs-uuid":         uuid.Register,
	"shopspring-numeric": numeric.Register,
	"apd-numeric":        apdnumeric.Register,
}

type decoder struct {
	m        *pgadapt.Map
	scope    *pgadapt.ConnScope
	logger   *zap.Logger
	logLevel pgadapt.LogLevel
	out      *json.Encoder
}

func newDecoder(s *settings, out, errOut io.Writer) (*decoder, error) {
	logLevel := pgadapt.LogLevelInfo
	if s.LogLevel != "" {
		var err error
		logLevel, err = pgadapt.LogLevelFromString(s.LogLevel)
		if err != nil {
			return nil, err
		}
	}

	// pgadapt filters by level, so the core lets everything through.
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.AddSync(errOut), zapcore.DebugLevel)
	logger := zap.New(core)

	config, err := pgadapt.ParseConfig(s.Conn)
	if err != nil {
		return nil, err
	}
	scope, err := pgadapt.NewConnScope(config)
	if err != nil {
		return nil, err
	}

	m := pgadapt.NewMap()
	m.Logger = zapadapter.NewLogger(logger)
	m.LogLevel = logLevel

	for _, name := range s.Extensions {
		register, ok := extensions[name]
		if !ok {
			known := lo.Keys(extensions)
			sort.Strings(known)
			return nil, fmt.Errorf("unknown extension %q, expected one of %v", name, known)
		}
		if err := register(m, scope); err != nil {
			return nil, fmt.Errorf("register %s: %w", name, err)
		}
	}
	if s.PostGISOID != 0 {
		if err := postgis.Register(m, s.PostGISOID, scope); err != nil {
			return nil, fmt.Errorf("register postgis: %w", err)
		}
	}
	if len(s.PgtypeOIDs) > 0 {
		if err := pgxcodec.RegisterDecoders(m, pgtype.NewMap(), scope, s.PgtypeOIDs...); err != nil {
			return nil, err
		}
	}

	return &decoder{
		m:        m,
		scope:    scope,
		logger:   logger,
		logLevel: logLevel,
		out:      json.NewEncoder(out),
	}, nil
}

type statementLine struct {
	Response   int      `json:"response"`
	Statement  int      `json:"statement"`
	CommandTag string   `json:"command_tag"`
	Columns    []string `json:"columns"`
	Rows       [][]any  `json:"rows"`
}

type errorLine struct {
	Response      int    `json:"response"`
	SQLState      string `json:"sqlstate"`
	DataException bool   `json:"data_exception"`
	Error         string `json:"error"`
}

// run decodes every response in r until the capture is exhausted.
func (d *decoder) run(r io.Reader) error {
	rd := pgresult.NewReader(r, d.scope)
	rd.Logger = d.m.Logger
	rd.LogLevel = d.logLevel

	for response := 0; ; response++ {
		results, err := rd.ReadResults(context.Background())
		if errors.Is(err, io.EOF) {
			return nil
		}

		// A server error or a parameter the scope cannot apply still leaves the stream at the next response.
		var pgErr *pgresult.PgError
		errors.As(err, &pgErr)
		if err != nil && pgErr == nil && !errors.Is(err, pgadapt.ErrConfig) {
			return fmt.Errorf("response %d: %w", response, err)
		}

		// A Transformer per response, so a client_encoding change reported by the capture applies to what follows.
		tx, txErr := d.m.NewTransformer(d.scope)
		if txErr != nil {
			return txErr
		}

		for i, result := range results {
			line, err := decodeResult(tx, result)
			if err != nil {
				return fmt.Errorf("response %d statement %d: %w", response, i, err)
			}
			line.Response = response
			line.Statement = i
			if err := d.out.Encode(line); err != nil {
				return err
			}
		}

		if pgErr != nil {
			if err := d.out.Encode(errorLine{
				Response:      response,
				SQLState:      pgErr.SQLState(),
				DataException: pgErr.IsDataException(),
				Error:         pgErr.Error(),
			}); err != nil {
				return err
			}
		}
	}
}

func decodeResult(tx *pgadapt.Transformer, result *pgresult.Result) (*statementLine, error) {
	line := &statementLine{
		CommandTag: result.CommandTag,
		Columns:    lo.Map(result.Fields, func(f pgresult.Field, _ int) string { return f.Name }),
		Rows:       make([][]any, 0, result.NumRows()),
	}

	for row := 0; row < result.NumRows(); row++ {
		rv, err := tx.DecodeRow(result, row)
		if err != nil {
			return nil, err
		}
		values, err := rv.Values()
		if err != nil {
			return nil, err
		}
		line.Rows = append(line.Rows, lo.Map(values, func(v any, _ int) any { return jsonValue(v) }))
	}

	return line, nil
}

// jsonValue converts decoded values without a useful JSON form.
func jsonValue(v any) any {
	switch v := v.(type) {
	case []byte:
		return `\x` + hex.EncodeToString(v)
	case time.Time:
		return v
	case geom.T:
		s, err := wkt.Marshal(v)
		if err != nil {
			return err.Error()
		}
		return s
	case fmt.Stringer:
		return v.String()
	}
	return v
}
