package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/duration"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that accepts human-friendly values such as
// "30s" or "1m" in both the settings file and the environment.
type Duration time.Duration

// UnmarshalText conforms with encoding.TextUnmarshaler, used by env parsing.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := duration.Parse(string(b))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

// UnmarshalYAML conforms with yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err == nil {
		return d.UnmarshalText([]byte(s))
	}
	var n int64
	if err := node.Decode(&n); err == nil {
		*d = Duration(n)
		return nil
	}
	return fmt.Errorf("parse duration: unsupported value %q", node.Value)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}
