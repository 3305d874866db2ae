package env_config

import (
	"io/ioutil"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"changelog-join/pkg/commtypes"
	"changelog-join/pkg/processor"

	"github.com/Jeffail/gabs/v2"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

const (
	BACKEND_BTREE   = "btree"
	BACKEND_SKIPMAP = "skipmap"
	BACKEND_REDIS   = "redis"
)

// Config holds everything needed to run a join. Values come from an optional
// JSON file and are overridden by the environment.
type Config struct {
	JoinName      string
	LogLevel      zerolog.Level
	StateBackend  string
	RedisAddr     []string
	MinRetention  time.Duration
	MaxRetention  time.Duration
	Parallelism   uint32
	SerdeFormat   commtypes.SerdeFormat
	PredicateName string
	PredicateCode string
	LeftTypes     []commtypes.FieldType
	RightTypes    []commtypes.FieldType
	// Field positions a record's join key is derived from when the input
	// carries no explicit key.
	LeftKeyFields  []int
	RightKeyFields []int
}

func DefaultConfig() *Config {
	return &Config{
		JoinName:      "join",
		LogLevel:      zerolog.WarnLevel,
		StateBackend:  BACKEND_BTREE,
		Parallelism:   1,
		SerdeFormat:   commtypes.MSGP,
		PredicateName: processor.EquiPredicateName,
	}
}

// Load reads the config file at path, if any, then applies the environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		byteVal, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.applyJSON(byteVal); err != nil {
			return nil, xerrors.Errorf("config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyJSON(byteVal []byte) error {
	jsonParsed, err := gabs.ParseJSON(byteVal)
	if err != nil {
		return err
	}
	str := func(path string, dst *string) error {
		if !jsonParsed.ExistsP(path) {
			return nil
		}
		v, ok := jsonParsed.Path(path).Data().(string)
		if !ok {
			return xerrors.Errorf("%s must be a string", path)
		}
		*dst = v
		return nil
	}
	num := func(path string, dst *int64) error {
		if !jsonParsed.ExistsP(path) {
			return nil
		}
		v, ok := jsonParsed.Path(path).Data().(float64)
		if !ok {
			return xerrors.Errorf("%s must be a number", path)
		}
		*dst = int64(v)
		return nil
	}
	types := func(path string, dst *[]commtypes.FieldType) error {
		if !jsonParsed.ExistsP(path) {
			return nil
		}
		children := jsonParsed.Path(path).Children()
		parsed := make([]commtypes.FieldType, 0, len(children))
		for _, child := range children {
			name, ok := child.Data().(string)
			if !ok {
				return xerrors.Errorf("%s must hold type names", path)
			}
			ft, err := commtypes.ParseFieldType(name)
			if err != nil {
				return err
			}
			parsed = append(parsed, ft)
		}
		*dst = parsed
		return nil
	}
	fields := func(path string, dst *[]int) error {
		if !jsonParsed.ExistsP(path) {
			return nil
		}
		children := jsonParsed.Path(path).Children()
		parsed := make([]int, 0, len(children))
		for _, child := range children {
			v, ok := child.Data().(float64)
			if !ok || v < 0 || v != float64(int(v)) {
				return xerrors.Errorf("%s must hold field positions", path)
			}
			parsed = append(parsed, int(v))
		}
		*dst = parsed
		return nil
	}

	var logLevel, serdeFormat, redisAddr string
	var minMs, maxMs, parallelism int64 = c.MinRetention.Milliseconds(), c.MaxRetention.Milliseconds(), int64(c.Parallelism)
	for _, err := range []error{
		str("join.name", &c.JoinName),
		str("join.predicate.name", &c.PredicateName),
		str("join.predicate.code", &c.PredicateCode),
		types("join.left_types", &c.LeftTypes),
		types("join.right_types", &c.RightTypes),
		fields("join.left_key_fields", &c.LeftKeyFields),
		fields("join.right_key_fields", &c.RightKeyFields),
		num("retention.min_ms", &minMs),
		num("retention.max_ms", &maxMs),
		str("state.backend", &c.StateBackend),
		str("state.redis_addr", &redisAddr),
		num("parallelism", &parallelism),
		str("serde_format", &serdeFormat),
		str("log_level", &logLevel),
	} {
		if err != nil {
			return err
		}
	}
	return c.set(logLevel, serdeFormat, redisAddr, minMs, maxMs, parallelism)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	minMs, maxMs, parallelism := c.MinRetention.Milliseconds(), c.MaxRetention.Milliseconds(), int64(c.Parallelism)
	for name, dst := range map[string]*int64{
		"MIN_RETENTION_MS": &minMs,
		"MAX_RETENTION_MS": &maxMs,
		"PARALLELISM":      &parallelism,
	} {
		if s := getenv(name); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return xerrors.Errorf("%s=%q: %w", name, s, err)
			}
			*dst = v
		}
	}
	if s := getenv("JOIN_NAME"); s != "" {
		c.JoinName = s
	}
	if s := getenv("STATE_BACKEND"); s != "" {
		c.StateBackend = s
	}
	if s := getenv("PREDICATE_NAME"); s != "" {
		c.PredicateName = s
	}
	if s := getenv("PREDICATE_CODE"); s != "" {
		c.PredicateCode = s
	}
	for name, dst := range map[string]*[]commtypes.FieldType{
		"LEFT_TYPES":  &c.LeftTypes,
		"RIGHT_TYPES": &c.RightTypes,
	} {
		if s := getenv(name); s != "" {
			parsed, err := ParseFieldTypes(s)
			if err != nil {
				return xerrors.Errorf("%s: %w", name, err)
			}
			*dst = parsed
		}
	}
	for name, dst := range map[string]*[]int{
		"LEFT_KEY_FIELDS":  &c.LeftKeyFields,
		"RIGHT_KEY_FIELDS": &c.RightKeyFields,
	} {
		if s := getenv(name); s != "" {
			parsed, err := ParseKeyFields(s)
			if err != nil {
				return xerrors.Errorf("%s: %w", name, err)
			}
			*dst = parsed
		}
	}
	return c.set(getenv("LOG_LEVEL"), getenv("SERDE_FORMAT"), getenv("REDIS_ADDR"), minMs, maxMs, parallelism)
}

// set applies the fields shared by the file and the environment. Empty
// strings keep the current value.
func (c *Config) set(logLevel, serdeFormat, redisAddr string, minMs, maxMs, parallelism int64) error {
	if logLevel != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(logLevel))
		if err != nil {
			return err
		}
		c.LogLevel = level
	}
	if serdeFormat != "" {
		f, err := commtypes.ParseSerdeFormat(serdeFormat)
		if err != nil {
			return err
		}
		c.SerdeFormat = f
	}
	if redisAddr != "" {
		c.RedisAddr = strings.Split(redisAddr, ",")
	}
	if minMs < 0 || maxMs < 0 {
		return xerrors.Errorf("retention must not be negative: min %d ms, max %d ms", minMs, maxMs)
	}
	c.MinRetention = time.Duration(minMs) * time.Millisecond
	c.MaxRetention = time.Duration(maxMs) * time.Millisecond
	if parallelism <= 0 || parallelism > math.MaxUint32 {
		return xerrors.Errorf("parallelism must be in [1, %d], got %d", uint32(math.MaxUint32), parallelism)
	}
	c.Parallelism = uint32(parallelism)
	return nil
}

func ParseFieldTypes(s string) ([]commtypes.FieldType, error) {
	var types []commtypes.FieldType
	for _, name := range strings.Split(s, ",") {
		ft, err := commtypes.ParseFieldType(name)
		if err != nil {
			return nil, err
		}
		types = append(types, ft)
	}
	return types, nil
}

func ParseKeyFields(s string) ([]int, error) {
	var idx []int
	for _, f := range strings.Split(s, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		if i < 0 {
			return nil, xerrors.Errorf("negative key field %d", i)
		}
		idx = append(idx, i)
	}
	return idx, nil
}

func (c *Config) Retention() (processor.RetentionConfig, error) {
	return processor.NewRetentionConfig(c.MinRetention, c.MaxRetention)
}

func (c *Config) Predicate() processor.PredicateSource {
	return processor.PredicateSource{Name: c.PredicateName, Code: c.PredicateCode}
}
