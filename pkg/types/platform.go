package types

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Platform is a supported warehouse SQL dialect.
type Platform int32

const (
	PlatformUnspecified Platform = 0
	PlatformBigQuery    Platform = 1
	PlatformSnowflake   Platform = 2
	PlatformDatabricks  Platform = 3
)

// Platforms lists every supported platform in a stable order.
var Platforms = []Platform{PlatformBigQuery, PlatformSnowflake, PlatformDatabricks}

func (p Platform) String() string {
	switch p {
	case PlatformBigQuery:
		return "BIGQUERY"
	case PlatformSnowflake:
		return "SNOWFLAKE"
	case PlatformDatabricks:
		return "DATABRICKS"
	default:
		return "PLATFORM_UNSPECIFIED"
	}
}

// DisplayName returns the vendor spelling of the platform.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformBigQuery:
		return "BigQuery"
	case PlatformSnowflake:
		return "Snowflake"
	case PlatformDatabricks:
		return "Databricks"
	default:
		return "Unknown"
	}
}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	return p == PlatformBigQuery || p == PlatformSnowflake || p == PlatformDatabricks
}

// ParsePlatform converts a user supplied name into a Platform.
// The abstract names A, B and C are accepted as well.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BIGQUERY", "BQ", "A":
		return PlatformBigQuery, nil
	case "SNOWFLAKE", "SF", "B":
		return PlatformSnowflake, nil
	case "DATABRICKS", "DBX", "SPARK", "C":
		return PlatformDatabricks, nil
	default:
		return PlatformUnspecified, errors.Errorf("unsupported platform: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so Platform can be used as a map key.
func (p Platform) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for Platform.
func (p *Platform) UnmarshalText(text []byte) error {
	parsed, err := ParsePlatform(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler for Platform
func (p *Platform) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return p.UnmarshalText([]byte(s))
}

// MarshalYAML implements yaml.Marshaler for Platform
func (p Platform) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// UnmarshalJSON implements json.Unmarshaler for Platform
func (p *Platform) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return p.UnmarshalText([]byte(s))
}
