/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package lib

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFlag = "config"

// BaseConfig holds the keys every binary understands.
type BaseConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

/**
	InitializeConfig standardises config initialization across all apps.

	Config is read from a yml file. By default this is located at defaultPath, but it can be
	overridden with the --config flag. Keys in defaultConfig that are missing from the yml file
	keep their default value.

	Env vars overwrite config keys when the env var has the same name as the key, uppercased,
	with "." replaced by "_". For example CLASSIFIER_HTTP_URL overwrites classifier.http.url.
	Only keys known to viper (from the file or the defaults) are read from the environment.

	targetStruct must be a pointer to a struct which the config can be unmarshalled to.
**/
func InitializeConfig(defaultPath string, defaultConfig map[string]interface{}, targetStruct interface{}) error {

	pflag.String(configFlag, defaultPath, "The config file path.")
	pflag.Parse()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return err
	}

	configFile := viper.GetString(configFlag)
	if !filepath.IsAbs(configFile) {
		abs, err := filepath.Abs(configFile)
		if err != nil {
			return err
		}
		configFile = abs
	}

	for k, v := range defaultConfig {
		viper.SetDefault(k, v)
	}

	viper.SetConfigName(strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile)))
	viper.AddConfigPath(filepath.Dir(configFile))

	// env vars win over the file, but only for keys viper already knows about.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	err := viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		log.Warn().Err(err).Msg("default settings applied")
	} else if err != nil {
		return err
	}

	var bc BaseConfig
	if err := viper.Unmarshal(&bc); err != nil {
		return err
	}
	if err := ConfigureLogging(bc); err != nil {
		return err
	}

	return viper.Unmarshal(targetStruct)
}

// ConfigureLogging applies the log level and output format to the global zerolog logger.
// An empty level means info.
func ConfigureLogging(bc BaseConfig) error {
	level := bc.LogLevel
	if level == "" {
		level = zerolog.InfoLevel.String()
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)

	if bc.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
	}
	return nil
}
