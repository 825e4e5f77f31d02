// Package config loads lanwatch options from a YAML file and LANWATCH_*
// environment variables.
//
// Durations accept Go syntax ("90s", "1h") or a plain number of seconds.
// Environment variables use upper case keys with dots replaced by
// underscores, e.g. LANWATCH_FILTERS_FAMILIES="IPv4 IPv6".
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/marcuoli/go-lanwatch/pkg/lanwatch"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/arp"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/oui"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/ping"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "LANWATCH"

// Name is the config file base name searched when no path is given.
const Name = "lanwatch"

// Probe implementations selectable with the "pinger" and "resolver" keys.
const (
	ProbeCommand = "command"
	ProbeICMP    = "icmp"
	ProbeArping  = "arping"
)

// Config is the loaded configuration.
type Config struct {
	Options     lanwatch.Options
	OUIDatabase string // vendor database file, empty for the embedded registry
	LogLevel    string
	File        string // config file that was read, if any
}

// Load reads path, or lanwatch.yaml from the working directory and
// $HOME/.config/lanwatch when path is empty. A missing default file is not
// an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/lanwatch")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := lanwatch.DefaultOptions()
	v.SetDefault("timeout", d.Timeout.String())
	v.SetDefault("include_endpoints", d.IncludeEndpoints)
	v.SetDefault("use_cache", d.UseCache)
	v.SetDefault("cache_timeout", d.CacheTimeout.String())
	v.SetDefault("connection_interval", d.ConnectionInterval.String())
	v.SetDefault("debug", d.Debug)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("resolve_names", d.ResolveNames)
	v.SetDefault("dns_servers", []string{})
	v.SetDefault("ssdp_names", d.SSDPNames)
	v.SetDefault("filters.interfaces", d.Filters.Interfaces)
	v.SetDefault("filters.internal", []string{"false"})
	v.SetDefault("filters.families", []string{string(lanwatch.IPv4)})
	v.SetDefault("pinger", ProbeCommand)
	v.SetDefault("resolver", ProbeCommand)
	v.SetDefault("privileged", false)
	v.SetDefault("oui_database", "")
	v.SetDefault("log_level", "")
}

func decode(v *viper.Viper) (*Config, error) {
	opts := lanwatch.DefaultOptions()

	var err error
	if opts.Timeout, err = duration(v, "timeout"); err != nil {
		return nil, err
	}
	if opts.CacheTimeout, err = duration(v, "cache_timeout"); err != nil {
		return nil, err
	}
	if opts.ConnectionInterval, err = duration(v, "connection_interval"); err != nil {
		return nil, err
	}
	opts.IncludeEndpoints = v.GetBool("include_endpoints")
	opts.UseCache = v.GetBool("use_cache")
	opts.Debug = v.GetBool("debug")
	opts.Workers = v.GetInt("workers")
	opts.ResolveNames = v.GetBool("resolve_names")
	opts.DNSServers = v.GetStringSlice("dns_servers")
	opts.SSDPNames = v.GetBool("ssdp_names")

	opts.Filters.Interfaces = v.GetStringSlice("filters.interfaces")
	opts.Filters.Internal = nil
	for _, s := range v.GetStringSlice("filters.internal") {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, &lanwatch.ConfigError{Field: "filters.internal", Value: s, Reason: "must be true or false"}
		}
		opts.Filters.Internal = append(opts.Filters.Internal, b)
	}
	opts.Filters.Families = nil
	for _, s := range v.GetStringSlice("filters.families") {
		opts.Filters.Families = append(opts.Filters.Families, family(s))
	}

	switch p := strings.ToLower(v.GetString("pinger")); p {
	case ProbeCommand, "":
		opts.Pinger = &ping.Command{}
	case ProbeICMP:
		opts.Pinger = &ping.ICMP{Privileged: v.GetBool("privileged")}
	default:
		return nil, &lanwatch.ConfigError{Field: "pinger", Value: p, Reason: "must be command or icmp"}
	}
	switch r := strings.ToLower(v.GetString("resolver")); r {
	case ProbeCommand, "":
		opts.Resolver = &arp.Command{}
	case ProbeArping:
		a := &arp.Arping{}
		if len(opts.Filters.Interfaces) == 1 {
			a.Interface = opts.Filters.Interfaces[0]
		}
		opts.Resolver = a
	default:
		return nil, &lanwatch.ConfigError{Field: "resolver", Value: r, Reason: "must be command or arping"}
	}

	cfg := &Config{
		OUIDatabase: v.GetString("oui_database"),
		LogLevel:    v.GetString("log_level"),
	}
	if cfg.OUIDatabase != "" {
		vendors, err := oui.Open(cfg.OUIDatabase)
		if err != nil {
			return nil, fmt.Errorf("load vendor database: %w", err)
		}
		opts.Vendors = vendors
	}
	cfg.Options = opts
	return cfg, nil
}

// duration parses key as a Go duration or a number of seconds.
func duration(v *viper.Viper, key string) (time.Duration, error) {
	s := strings.TrimSpace(v.GetString(key))
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(n * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, &lanwatch.ConfigError{Field: key, Value: s, Reason: "not a duration"}
	}
	return d, nil
}

func family(s string) lanwatch.Family {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ipv4", "4":
		return lanwatch.IPv4
	case "ipv6", "6":
		return lanwatch.IPv6
	default:
		return lanwatch.Family(s)
	}
}
