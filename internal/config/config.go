// Package config loads, saves and validates run configurations for the
// regloop CLI, and maps them onto loop, law and plant constructors.
package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"regloop/internal/law"
	"regloop/internal/loop"
	"regloop/internal/plant"
)

const (
	DefaultPeriod   = 0.01
	DefaultDt       = 0.001
	DefaultDuration = 10.0
	DefaultKp       = 4.0
	DefaultKi       = 2.0
	DefaultKd       = 0.0
)

type Config struct {
	Name      string  `yaml:"name"`
	Period    float64 `yaml:"period"`
	Tolerance float64 `yaml:"tolerance"`
	Setpoint  float64 `yaml:"setpoint"`
	Record    bool    `yaml:"record"`

	Law   LawConfig   `yaml:"law"`
	Plant PlantConfig `yaml:"plant"`
	Run   RunConfig   `yaml:"run"`
}

type LawConfig struct {
	Kind string `yaml:"kind"` // pid, relay, static

	// pid
	Kp     float64  `yaml:"kp"`
	Ki     float64  `yaml:"ki"`
	Kd     float64  `yaml:"kd"`
	OutMin *float64 `yaml:"out_min"`
	OutMax *float64 `yaml:"out_max"`

	// relay
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
	Band float64 `yaml:"band"`

	// static
	Out float64 `yaml:"out"`
}

type PlantConfig struct {
	Kind string `yaml:"kind"` // first_order, second_order

	// first_order
	Gain float64 `yaml:"gain"`
	Tau  float64 `yaml:"tau"`

	// second_order
	Mass      float64 `yaml:"mass"`
	Stiffness float64 `yaml:"stiffness"`
	Damping   float64 `yaml:"damping"`

	Initial float64 `yaml:"initial"`
}

type RunConfig struct {
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:     "demo",
		Period:   DefaultPeriod,
		Setpoint: 1.0,
		Record:   true,
		Law: LawConfig{
			Kind: "pid",
			Kp:   DefaultKp,
			Ki:   DefaultKi,
			Kd:   DefaultKd,
		},
		Plant: PlantConfig{
			Kind: "first_order",
			Gain: plant.DefaultGain,
			Tau:  0.2,
		},
		Run: RunConfig{
			Dt:       DefaultDt,
			Duration: DefaultDuration,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildLaw constructs the configured control law.
func (c *Config) BuildLaw() (law.Law, error) {
	switch c.Law.Kind {
	case "", "pid":
		p := law.NewPID(c.Law.Kp, c.Law.Ki, c.Law.Kd, c.Period)
		if c.Law.OutMin != nil || c.Law.OutMax != nil {
			lo, hi := math.Inf(-1), math.Inf(1)
			if c.Law.OutMin != nil {
				lo = *c.Law.OutMin
			}
			if c.Law.OutMax != nil {
				hi = *c.Law.OutMax
			}
			p.SetBounds(lo, hi)
		}
		return p, nil
	case "relay":
		return law.NewRelay(c.Law.Low, c.Law.High, c.Law.Band), nil
	case "static":
		return law.NewStatic(c.Law.Out), nil
	default:
		return nil, fmt.Errorf("config: unknown law kind %q", c.Law.Kind)
	}
}

// BuildPlant constructs the configured process model.
func (c *Config) BuildPlant() (plant.Plant, error) {
	switch c.Plant.Kind {
	case "", "first_order":
		p := plant.NewFirstOrder()
		if c.Plant.Gain != 0 {
			p.Gain = c.Plant.Gain
		}
		if c.Plant.Tau != 0 {
			p.Tau = c.Plant.Tau
		}
		p.SetInitial(c.Plant.Initial)
		return p, nil
	case "second_order":
		p := plant.NewSecondOrder()
		if c.Plant.Mass != 0 {
			p.Mass = c.Plant.Mass
		}
		if c.Plant.Stiffness != 0 {
			p.Stiffness = c.Plant.Stiffness
		}
		if c.Plant.Damping != 0 {
			p.Damping = c.Plant.Damping
		}
		p.SetInitial(c.Plant.Initial, 0)
		return p, nil
	default:
		return nil, fmt.Errorf("config: unknown plant kind %q", c.Plant.Kind)
	}
}

// BuildLoop constructs the configured controller.
func (c *Config) BuildLoop(logger *slog.Logger) (*loop.Controller, error) {
	l, err := c.BuildLaw()
	if err != nil {
		return nil, err
	}
	return loop.New(loop.Config{
		Name:      c.Name,
		Period:    c.Period,
		Tolerance: c.Tolerance,
		Law:       l,
		Setpoint:  loop.Float(c.Setpoint),
		Record:    c.Record,
		Logger:    logger,
	})
}
