// Package config resolves the paypal-mcp command line, environment and
// optional YAML file into Options.
//
// Precedence, highest first: --key=value arguments, environment variables,
// the file named by --config, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/ggoodman/paypal-mcp-server-go/stdio"
	"github.com/ggoodman/paypal-mcp-server-go/toolkit"
	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// AcceptedArgs lists the recognised --key=value arguments.
var AcceptedArgs = []string{"access-token", "tools", "paypal-environment", "config", "max-frame-bytes", "log-level"}

var (
	// ErrInvalidArgument reports an unknown or malformed argument.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMissingTools is returned when no tool selection was provided.
	ErrMissingTools = errors.New("the --tools argument must be provided")
	// ErrMissingAccessToken is returned when no access token was provided.
	ErrMissingAccessToken = errors.New("PayPal access token not provided. Please either pass it as an argument --access-token=$access_token_val or set the PAYPAL_ACCESS_TOKEN environment variable")
)

// Options is the resolved process configuration.
type Options struct {
	Tools         []string
	AccessToken   string
	Sandbox       bool
	MaxFrameBytes int
	LogLevel      slog.Level
}

// Mode names the PayPal environment.
func (o *Options) Mode() string {
	if o.Sandbox {
		return "Sandbox"
	}
	return "Production"
}

// Configuration builds the toolkit configuration for the selected tools.
func (o *Options) Configuration() toolkit.Configuration {
	cfg := toolkit.NewConfiguration(o.Tools)
	cfg.Context = &toolkit.Context{Sandbox: o.Sandbox}
	return cfg
}

// envConfig is populated by envdecode.
type envConfig struct {
	AccessToken   string `env:"PAYPAL_ACCESS_TOKEN"`
	Environment   string `env:"PAYPAL_ENVIRONMENT"`
	MaxFrameBytes string `env:"MCP_MAX_FRAME_BYTES"`
	LogLevel      string `env:"MCP_LOG_LEVEL"`
}

// fileConfig is the YAML file layout.
type fileConfig struct {
	Tools         []string `yaml:"tools"`
	AccessToken   string   `yaml:"access_token"`
	Environment   string   `yaml:"paypal_environment"`
	MaxFrameBytes *int     `yaml:"max_frame_bytes"`
	LogLevel      string   `yaml:"log_level"`
}

// Parse resolves Options from process arguments (without the program name),
// the environment and the optional config file.
func Parse(args []string) (*Options, error) {
	flags, err := parseArgs(args)
	if err != nil {
		return nil, err
	}

	var file fileConfig
	if path := flags["config"]; path != "" {
		if file, err = loadFile(path); err != nil {
			return nil, err
		}
	}

	var env envConfig
	if err := envdecode.Decode(&env); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	opts := &Options{Sandbox: true, MaxFrameBytes: stdio.DefaultMaxFrameSize, LogLevel: slog.LevelInfo}

	if v, ok := flags["tools"]; ok {
		opts.Tools = toolkit.ParseTools(v)
	} else {
		opts.Tools = toolkit.ParseTools(strings.Join(file.Tools, ","))
	}
	if len(opts.Tools) == 0 {
		return nil, ErrMissingTools
	}
	if err := toolkit.ValidateTools(opts.Tools); err != nil {
		return nil, err
	}

	opts.AccessToken = first(flags["access-token"], env.AccessToken, file.AccessToken)
	if opts.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}

	if environment := first(flags["paypal-environment"], env.Environment, file.Environment); environment != "" {
		opts.Sandbox = !strings.EqualFold(environment, "production")
	}

	var fileFrame string
	if file.MaxFrameBytes != nil {
		fileFrame = strconv.Itoa(*file.MaxFrameBytes)
	}
	if v := first(flags["max-frame-bytes"], env.MaxFrameBytes, fileFrame); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: max-frame-bytes must be a non-negative integer, got %q", ErrInvalidArgument, v)
		}
		opts.MaxFrameBytes = n
	}

	if v := first(flags["log-level"], env.LogLevel, file.LogLevel); v != "" {
		if err := opts.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("%w: log-level: %v", ErrInvalidArgument, err)
		}
	}

	return opts, nil
}

// parseArgs collects --key=value arguments. Arguments without the -- prefix
// are ignored.
func parseArgs(args []string) (map[string]string, error) {
	out := map[string]string{}
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		key, value, ok := strings.Cut(arg[2:], "=")
		if !slices.Contains(AcceptedArgs, key) {
			return nil, fmt.Errorf("%w: %s. Accepted arguments are: %s", ErrInvalidArgument, key, strings.Join(AcceptedArgs, ", "))
		}
		if !ok {
			return nil, fmt.Errorf("%w: --%s requires a value (--%s=...)", ErrInvalidArgument, key, key)
		}
		out[key] = value
	}
	return out, nil
}

func loadFile(path string) (fileConfig, error) {
	var cfg fileConfig
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
