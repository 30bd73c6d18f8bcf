package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"

	"github.com/adrycodes/anthro-bridge/internal/mapper"
)

// envPrefix is the generic koanf env pass's prefix, stripped during
// loading (ANTHRO_BRIDGE_SERVER__HOST -> server.host). This coexists with
// a second, spec-shaped env pass (see resolveSpecEnvVars below) because the environment variable names this proxy
// actually documents (MODEL_ROUTER_*, OPENAI_*, ANTHROPIC_AUTH_TOKEN) don't
// follow the generic prefix-and-nest convention the koanf env provider
// expects — they're flat, pre-existing names from the ecosystem this proxy
// interoperates with, not config keys this repository gets to invent.
const envPrefix = "ANTHRO_BRIDGE_"

// Load builds a Config from, in ascending precedence: defaults, config
// file, generic environment variables, the spec-shaped environment
// variables named in §6, then CLI flags.
func Load(configPath string, cmd *cli.Command, environFunc func() []string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			stripped := strings.TrimPrefix(key, envPrefix)
			nested := strings.ToLower(strings.ReplaceAll(stripped, "__", "."))
			return nested, value
		},
		EnvironFunc: environFunc,
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	if err := k.Load(confmap.Provider(resolveSpecEnvVars(environFunc), "."), nil); err != nil {
		return nil, fmt.Errorf("loading spec-named environment variables: %w", err)
	}

	if cmd != nil {
		if err := k.Load(confmap.Provider(extractAndTransformFlags(cmd), "."), nil); err != nil {
			return nil, fmt.Errorf("loading CLI flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("applying defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// resolveSpecEnvVars reads the exact environment variable names §6 names
// and maps them onto config keys, honoring each one's own fallback chain
// (e.g. upstream base URL tries three separate variable names before the
// built-in default).
func resolveSpecEnvVars(environFunc func() []string) map[string]any {
	lookup := environLookup(environFunc)
	values := make(map[string]any)

	if base := firstNonEmpty(lookup, "MODEL_ROUTER_OPENAI_BASE_URL", "OPENAI_BASE_URL", "OPENAI_API_BASE"); base != "" {
		values["upstream.base_url"] = base
	}
	if force := lookup["MODEL_ROUTER_FORCE_RESPONSES"]; force != "" {
		values["upstream.force_responses"] = mapper.IsForceResponsesTruthy(force)
	}
	if host := lookup["MODEL_ROUTER_PROXY_HOST"]; host != "" {
		values["server.host"] = host
	}
	if port := lookup["MODEL_ROUTER_PROXY_PORT"]; port != "" {
		values["server.port"] = port
	}
	if url := lookup["MODEL_ROUTER_PROXY_URL"]; url != "" {
		values["supervisor.proxy_url"] = url
	}

	return values
}

func environLookup(environFunc func() []string) map[string]string {
	if environFunc == nil {
		environFunc = os.Environ
	}
	m := make(map[string]string)
	for _, kv := range environFunc() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}

func firstNonEmpty(lookup map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := lookup[k]; v != "" {
			return v
		}
	}
	return ""
}

// extractAndTransformFlags mirrors the teacher's CLI-flag-to-config-key
// transform: "--server--host" -> "server.host".
func extractAndTransformFlags(cmd *cli.Command) map[string]any {
	values := make(map[string]any)
	for _, name := range cmd.FlagNames() {
		if !cmd.IsSet(name) {
			continue
		}
		if value := cmd.Value(name); value != nil {
			key := strings.ReplaceAll(name, "--", ".")
			key = strings.ReplaceAll(key, "-", "_")
			values[key] = value
		}
	}
	return values
}
