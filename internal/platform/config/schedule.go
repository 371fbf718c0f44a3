package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v2"

	"payrun/internal/domain/payroll"
)

type scheduleFile struct {
	Bands []struct {
		Width float64 `yaml:"width"`
		Rate  float64 `yaml:"rate"`
	} `yaml:"bands"`
	Rates  payroll.Rates  `yaml:"rates"`
	Relief payroll.Relief `yaml:"relief"`
}

// LoadSchedule returns the default statutory schedule, overridden by the
// YAML file at path when one is given. Keys missing from the file keep
// their defaults; a band width of 0 on the last band means unbounded.
func LoadSchedule(path string) (payroll.Schedule, error) {
	schedule := payroll.DefaultSchedule()
	if path == "" {
		return schedule, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return payroll.Schedule{}, fmt.Errorf("read tax schedule: %w", err)
	}
	return ParseSchedule(raw)
}

func ParseSchedule(raw []byte) (payroll.Schedule, error) {
	schedule := payroll.DefaultSchedule()
	file := scheduleFile{Rates: schedule.Rates, Relief: schedule.Relief}
	if err := yaml.UnmarshalStrict(raw, &file); err != nil {
		return payroll.Schedule{}, fmt.Errorf("parse tax schedule: %w", err)
	}

	if len(file.Bands) > 0 {
		bands := make([]payroll.Band, len(file.Bands))
		for i, b := range file.Bands {
			if b.Rate < 0 || b.Rate > 1 {
				return payroll.Schedule{}, fmt.Errorf("tax band %d: rate must be between 0 and 1", i+1)
			}
			width := b.Width
			if i == len(file.Bands)-1 && width == 0 {
				width = math.Inf(1)
			}
			if width <= 0 {
				return payroll.Schedule{}, fmt.Errorf("tax band %d: width must be positive", i+1)
			}
			bands[i] = payroll.Band{Width: width, Rate: b.Rate}
		}
		schedule.Bands = bands
	}
	schedule.Rates = file.Rates
	schedule.Relief = file.Relief
	return schedule, nil
}
