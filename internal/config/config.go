// Package config loads iseeyou settings from defaults, an optional YAML file,
// the environment and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vulnverified/iseeyou/internal/synth"
)

// EnvPrefix prefixes every environment override, e.g. ISEEYOU_KEYS_SHODAN.
const EnvPrefix = "ISEEYOU"

// Config is the typed view of all settings.
type Config struct {
	Server    Server       `mapstructure:"server"`
	Log       Log          `mapstructure:"log"`
	UserAgent string       `mapstructure:"user_agent"`
	Timeouts  Timeouts     `mapstructure:"timeouts"`
	DNS       DNS          `mapstructure:"dns"`
	Keys      Keys         `mapstructure:"keys"`
	Username  Username     `mapstructure:"username"`
	Scan      Scan         `mapstructure:"scan"`
	Synth     synth.Params `mapstructure:"synth"`
}

type Server struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	BasePath    string   `mapstructure:"base_path"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Addr returns host:port for net.Listen.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Timeouts are per-tier attempt budgets.
type Timeouts struct {
	Whois        time.Duration `mapstructure:"whois"`
	WhoisCLI     time.Duration `mapstructure:"whois_cli"`
	Hackertarget time.Duration `mapstructure:"hackertarget"`
	RDAP         time.Duration `mapstructure:"rdap"`
	DNS          time.Duration `mapstructure:"dns"`
	DNSTXT       time.Duration `mapstructure:"dns_txt"`
	Dig          time.Duration `mapstructure:"dig"`
	DoH          time.Duration `mapstructure:"doh"`
	Headers      time.Duration `mapstructure:"headers"`
	Geo          time.Duration `mapstructure:"geo"`
	IPWhois      time.Duration `mapstructure:"ip_whois"`
	ReverseDNS   time.Duration `mapstructure:"reverse_dns"`
	Shodan       time.Duration `mapstructure:"shodan"`
	Breach       time.Duration `mapstructure:"breach"`
	Probe        time.Duration `mapstructure:"probe"`
	Sherlock     time.Duration `mapstructure:"sherlock"`
	Harvest      time.Duration `mapstructure:"harvest"`
}

type DNS struct {
	// Resolver is host[:port]; empty means the first nameserver in
	// /etc/resolv.conf.
	Resolver string `mapstructure:"resolver"`
	DoHURL   string `mapstructure:"doh_url"`
}

// Keys holds credentials for keyed sources. Empty keys leave the source
// unconfigured.
type Keys struct {
	Shodan          string `mapstructure:"shodan"`
	HIBP            string `mapstructure:"hibp"`
	BreachDirectory string `mapstructure:"breachdirectory"`
}

type Username struct {
	Interval  time.Duration `mapstructure:"interval"`
	LiveProbe bool          `mapstructure:"live_probe"`
}

// Scan controls the opt-in TCP connect-scan tier.
type Scan struct {
	Enabled     bool          `mapstructure:"enabled"`
	Concurrency int           `mapstructure:"concurrency"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.base_path", "/api")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("user_agent", "")

	v.SetDefault("timeouts.whois", 10*time.Second)
	v.SetDefault("timeouts.whois_cli", 15*time.Second)
	v.SetDefault("timeouts.hackertarget", 10*time.Second)
	v.SetDefault("timeouts.rdap", 10*time.Second)
	v.SetDefault("timeouts.dns", 5*time.Second)
	v.SetDefault("timeouts.dns_txt", 10*time.Second)
	v.SetDefault("timeouts.dig", 8*time.Second)
	v.SetDefault("timeouts.doh", 8*time.Second)
	v.SetDefault("timeouts.headers", 10*time.Second)
	v.SetDefault("timeouts.geo", 10*time.Second)
	v.SetDefault("timeouts.ip_whois", 15*time.Second)
	v.SetDefault("timeouts.reverse_dns", 5*time.Second)
	v.SetDefault("timeouts.shodan", 15*time.Second)
	v.SetDefault("timeouts.breach", 15*time.Second)
	v.SetDefault("timeouts.probe", 10*time.Second)
	v.SetDefault("timeouts.sherlock", 20*time.Second)
	v.SetDefault("timeouts.harvest", 10*time.Second)

	v.SetDefault("dns.resolver", "")
	v.SetDefault("dns.doh_url", "https://dns.google/resolve")

	v.SetDefault("keys.shodan", "")
	v.SetDefault("keys.hibp", "")
	v.SetDefault("keys.breachdirectory", "")

	v.SetDefault("username.interval", 500*time.Millisecond)
	v.SetDefault("username.live_probe", false)

	v.SetDefault("scan.enabled", false)
	v.SetDefault("scan.concurrency", 16)
	v.SetDefault("scan.dial_timeout", time.Second)

	p := synth.DefaultParams()
	v.SetDefault("synth.base_prob_min", p.BaseProbMin)
	v.SetDefault("synth.base_prob_max", p.BaseProbMax)
	v.SetDefault("synth.popular_boost", p.PopularBoost)
	v.SetDefault("synth.popular_cap", p.PopularCap)
	v.SetDefault("synth.popular_min_len", p.PopularMinLen)
	v.SetDefault("synth.popular_max_len", p.PopularMaxLen)
	v.SetDefault("synth.min_ports", p.MinPorts)
	v.SetDefault("synth.max_ports", p.MaxPorts)
	v.SetDefault("synth.patch_jitter", p.PatchJitter)
	v.SetDefault("synth.vuln_chance", p.VulnChance)
	v.SetDefault("synth.max_vulns", p.MaxVulns)
}

// BindFlags defines the flags that override config keys on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a YAML config file")
	fs.String("host", "", "Listen host (server.host)")
	fs.Int("port", 0, "Listen port (server.port)")
	fs.String("log-level", "", "Log level: debug, info, warn, error")
	fs.String("log-format", "", "Log format: text or json")
	fs.String("resolver", "", "DNS resolver host[:port]")
	fs.Bool("live-probe", false, "Let the username catalog scan probe every site itself")
	fs.Bool("connect-scan", false, "Let the service scan TCP-connect to the target")
}

// flagKeys maps flag names to the config keys they override.
var flagKeys = map[string]string{
	"host":         "server.host",
	"port":         "server.port",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"resolver":     "dns.resolver",
	"live-probe":   "username.live_probe",
	"connect-scan": "scan.enabled",
}

// Load builds a Config. fs may be nil; when set, flags defined by BindFlags
// that the user changed take precedence over every other source.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT"); err != nil {
		return nil, err
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding --%s: %w", name, err)
				}
			}
		}
	}

	path := ""
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			path = f.Value.String()
		}
	}
	if err := readConfigFile(v, path); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("iseeyou")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "iseeyou"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range (1-65535)", c.Server.Port)
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("server.base_path %q must start with /", c.Server.BasePath)
	}
	for _, o := range c.Server.CORSOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("server.cors_origins %q must be * or an http(s) origin", o)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q must be text or json", c.Log.Format)
	}

	timeouts := map[string]time.Duration{
		"whois": c.Timeouts.Whois, "whois_cli": c.Timeouts.WhoisCLI, "hackertarget": c.Timeouts.Hackertarget,
		"rdap": c.Timeouts.RDAP, "dns": c.Timeouts.DNS, "dns_txt": c.Timeouts.DNSTXT, "dig": c.Timeouts.Dig,
		"doh": c.Timeouts.DoH, "headers": c.Timeouts.Headers, "geo": c.Timeouts.Geo,
		"ip_whois": c.Timeouts.IPWhois, "reverse_dns": c.Timeouts.ReverseDNS, "shodan": c.Timeouts.Shodan,
		"breach": c.Timeouts.Breach, "probe": c.Timeouts.Probe, "sherlock": c.Timeouts.Sherlock,
		"harvest": c.Timeouts.Harvest,
	}
	for name, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("timeouts.%s must be positive", name)
		}
	}
	if c.Username.Interval < 0 {
		return errors.New("username.interval must not be negative")
	}
	if c.Scan.Concurrency < 1 || c.Scan.Concurrency > 1000 {
		return fmt.Errorf("scan.concurrency %d out of range (1-1000)", c.Scan.Concurrency)
	}
	if c.Scan.DialTimeout <= 0 {
		return errors.New("scan.dial_timeout must be positive")
	}

	p := c.Synth
	if p.BaseProbMin < 0 || p.BaseProbMax > 1 || p.BaseProbMin > p.BaseProbMax {
		return errors.New("synth.base_prob_min/max must satisfy 0 <= min <= max <= 1")
	}
	if p.PopularCap < 0 || p.PopularCap > 1 {
		return errors.New("synth.popular_cap must be within [0, 1]")
	}
	if p.MinPorts < 1 || p.MinPorts > p.MaxPorts {
		return errors.New("synth.min_ports must be at least 1 and at most synth.max_ports")
	}
	if p.MaxVulns < 0 {
		return errors.New("synth.max_vulns must not be negative")
	}
	return nil
}
