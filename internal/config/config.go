package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultCO2              = 400.0
	DefaultSubcanopyBiomass = 0.07
	DefaultSeedbankBiomass  = 0.07
	DefaultShortwave        = 2040.0
	DefaultMonths           = 12
	DefaultStartDate        = "2013-01-01"
	DefaultFillValue        = -9999.0
)

type Config struct {
	Site     string         `yaml:"site"`
	Data     DataConfig     `yaml:"data"`
	Climate  ClimateConfig  `yaml:"climate"`
	Plants   PlantConfig    `yaml:"plants"`
	Download DownloadConfig `yaml:"download"`
}

type DataConfig struct {
	PrimaryDir string  `yaml:"primary_dir"`
	DerivedDir string  `yaml:"derived_dir"`
	FillValue  float64 `yaml:"fill_value"`
}

type ClimateConfig struct {
	CO2PPM    float64 `yaml:"co2_ppm"`
	Months    int     `yaml:"months"`
	StartDate string  `yaml:"start_date"`
}

type PlantConfig struct {
	SubcanopyBiomass float64 `yaml:"subcanopy_biomass"`
	SeedbankBiomass  float64 `yaml:"seedbank_biomass"`
	Shortwave        float64 `yaml:"shortwave"`
}

type DownloadConfig struct {
	Years     []int      `yaml:"years"`
	BBox      [4]float64 `yaml:"bbox"`
	Variables []string   `yaml:"variables"`
}

func DefaultConfig() *Config {
	return &Config{
		Site: "maliau",
		Data: DataConfig{
			PrimaryDir: "data/primary",
			DerivedDir: "data/derived",
			FillValue:  DefaultFillValue,
		},
		Climate: ClimateConfig{
			CO2PPM:    DefaultCO2,
			Months:    DefaultMonths,
			StartDate: DefaultStartDate,
		},
		Plants: PlantConfig{
			SubcanopyBiomass: DefaultSubcanopyBiomass,
			SeedbankBiomass:  DefaultSeedbankBiomass,
			Shortwave:        DefaultShortwave,
		},
		Download: DownloadConfig{
			Years: []int{2013, 2014},
			BBox:  [4]float64{4.8, 116.8, 4.6, 117.0},
			Variables: []string{
				"2m_temperature",
				"2m_dewpoint_temperature",
				"surface_pressure",
				"10m_u_component_of_wind",
				"total_precipitation",
				"surface_solar_radiation_downwards",
			},
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
