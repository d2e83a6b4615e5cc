package config

func f(v float64) *float64 { return &v }

var Presets = map[string]*Config{
	"thermal": {
		Name: "thermal", Period: 0.1, Setpoint: 60.0, Record: true,
		Law:   LawConfig{Kind: "pid", Kp: 2.0, Ki: 0.5, Kd: 0.0, OutMin: f(0), OutMax: f(100)},
		Plant: PlantConfig{Kind: "first_order", Gain: 0.8, Tau: 5.0, Initial: 20.0},
		Run:   RunConfig{Dt: 0.01, Duration: 60.0},
	},
	"servo": {
		Name: "servo", Period: 0.005, Setpoint: 0.5, Record: true,
		Law:   LawConfig{Kind: "pid", Kp: 80.0, Ki: 40.0, Kd: 4.0},
		Plant: PlantConfig{Kind: "second_order", Mass: 0.5, Stiffness: 20.0, Damping: 2.0},
		Run:   RunConfig{Dt: 0.0005, Duration: 5.0},
	},
	"thermostat": {
		Name: "thermostat", Period: 0.5, Setpoint: 21.0, Record: true,
		Law:   LawConfig{Kind: "relay", Low: 0, High: 1500, Band: 0.5},
		Plant: PlantConfig{Kind: "first_order", Gain: 0.01, Tau: 120.0, Initial: 15.0},
		Run:   RunConfig{Dt: 0.05, Duration: 600.0},
	},
	"open_loop": {
		Name: "open_loop", Period: 0.01, Setpoint: 0, Record: true,
		Law:   LawConfig{Kind: "static", Out: 1.0},
		Plant: PlantConfig{Kind: "first_order", Gain: 2.0, Tau: 0.5},
		Run:   RunConfig{Dt: 0.001, Duration: 5.0},
	},
}

// GetPreset returns a copy of the named preset, nil when unknown.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// ListPresets returns the available preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
