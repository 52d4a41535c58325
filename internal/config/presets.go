package config

var Presets = map[string]*Config{
	"maliau": func() *Config {
		cfg := DefaultConfig()
		cfg.Site = "maliau"
		return cfg
	}(),
	"maliau-decade": func() *Config {
		cfg := DefaultConfig()
		cfg.Site = "maliau"
		cfg.Climate.Months = 120
		cfg.Climate.StartDate = "2010-01-01"
		cfg.Download.Years = []int{2010, 2011, 2012, 2013, 2014, 2015, 2016, 2017, 2018, 2019}
		return cfg
	}(),
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
