package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Mode string

const (
	// ModeAuto classifies the deployment from Origin.
	ModeAuto   Mode = "auto"
	ModeStatic Mode = "static"
	ModeLive   Mode = "live"
)

type Application struct {
	Listen  string  `koanf:"listen"`
	Origin  string  `koanf:"origin"`
	Mode    Mode    `koanf:"mode"`
	Backend Backend `koanf:"backend"`
	Cache   Cache   `koanf:"cache"`
	Static  Static  `koanf:"static"`
}

type Backend struct {
	BaseURL  string        `koanf:"baseurl"`
	Endpoint string        `koanf:"endpoint"`
	Timeout  time.Duration `koanf:"timeout"`
}

type Cache struct {
	StaleTime  time.Duration `koanf:"staletime"`
	EvictAfter time.Duration `koanf:"evictafter"`
}

type Static struct {
	Delay time.Duration `koanf:"delay"`
}

func defaults() Application {
	return Application{
		Listen: ":8181",
		Origin: "http://localhost:8181",
		Mode:   ModeAuto,
		Backend: Backend{
			BaseURL:  "http://localhost:5000",
			Endpoint: "/api/dashboard",
			Timeout:  10 * time.Second,
		},
		Cache: Cache{
			StaleTime:  5 * time.Minute,
			EvictAfter: 30 * time.Minute,
		},
		Static: Static{
			Delay: 500 * time.Millisecond,
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: "WORKLOG_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "WORKLOG_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := app.Validate(); err != nil {
		return Application{}, err
	}
	return app, nil
}

func (a Application) Validate() error {
	switch a.Mode {
	case ModeAuto, ModeStatic, ModeLive:
	default:
		return fmt.Errorf("invalid mode %q, expected one of auto, static, live", a.Mode)
	}
	if a.Mode != ModeStatic && a.Backend.BaseURL == "" {
		return fmt.Errorf("backend.baseurl is required in %s mode", a.Mode)
	}
	if !strings.HasPrefix(a.Backend.Endpoint, "/") {
		return fmt.Errorf("backend.endpoint must start with '/': %q", a.Backend.Endpoint)
	}
	if a.Backend.Timeout < 0 || a.Cache.StaleTime <= 0 || a.Cache.EvictAfter <= 0 || a.Static.Delay < 0 {
		return fmt.Errorf("durations must not be negative, cache.staletime and cache.evictafter must be positive")
	}
	return nil
}
