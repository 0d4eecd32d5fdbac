/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package config

import (
	"strings"

	"github.com/spf13/viper"
)

// SetValue sets a configuration value for the specified key.
func SetValue(key string, value interface{}) {
	viper.Set(key, value)
}

// LoadConfig loads configuration from the specified yaml file path and binds
// the environment. Deployed environments usually run without a file and rely
// on environment variables only; call BindEnvironment in that case.
func LoadConfig(path string) error {
	BindEnvironment()
	if path == "" {
		return nil
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	return viper.ReadInConfig()
}

// BindEnvironment wires environment variables into the viper keyspace.
// Dotted keys map to underscore-separated variables (db.host -> DB_HOST);
// the explicit binds keep the historical variable names working.
func BindEnvironment() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.BindEnv(pollingMaxMessages, "MAX_POLL_MESSAGES")
	viper.BindEnv(pollingWaitTime, "POLL_WAIT_TIME")
	viper.BindEnv(pollingExitAfter, "EXIT_AFTER_COMPLETION")
	viper.BindEnv(logLevel, "LOG_LEVEL")
	viper.BindEnv(queueEndpoint, "SQS_ENDPOINT_URL")
	viper.BindEnv(secretsEndpoint, "SECRETS_ENDPOINT_URL")
	viper.BindEnv(queueRegion, "AWS_REGION")
}

func getString(key, defaultValue string) string {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetString(key)
}

func getBool(key string, defaultValue bool) bool {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetBool(key)
}

func getInt(key string, defaultValue int) int {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetInt(key)
}
