// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environement variables.
type Config struct {
	ServerAddress string  `mapstructure:"SERVER_ADDRESS"`
	StoragePath   string  `mapstructure:"STORAGE_PATH"`
	StepTimeScale float64 `mapstructure:"STEP_TIME_SCALE"`
	Environement  string  `mapstructure:"GO_ENV"`
}

// Load read configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = viper.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	if c.StepTimeScale == 0 {
		c.StepTimeScale = 1
	}

	return c, nil
}
