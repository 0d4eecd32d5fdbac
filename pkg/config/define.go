/*
 * Copyright (C) 2025-2026, the Flow-Builder Authors. All rights reserved.
 * See LICENSE for license information.
 */

package config

const (
	// db
	dbPrefix               = "db."
	dbHost                 = dbPrefix + "host"
	dbPort                 = dbPrefix + "port"
	dbName                 = dbPrefix + "name"
	dbUser                 = dbPrefix + "user"
	dbPassword             = dbPrefix + "password"
	dbUseSSL               = dbPrefix + "use_ssl"
	dbSSLMode              = dbPrefix + "ssl_mode"
	dbMaxOpenConns         = dbPrefix + "max_open_conns"
	dbMaxIdleConns         = dbPrefix + "max_idle_conns"
	dbMaxLifetimeSecond    = dbPrefix + "max_lifetime_second"
	dbMaxIdleTimeSecond    = dbPrefix + "max_idle_time_second"
	dbConnectTimeoutSecond = dbPrefix + "connect_timeout_second"
	dbRequestTimeoutSecond = dbPrefix + "request_timeout_second"

	// workflow queue
	workflowPrefix   = "workflow."
	workflowQueueURL = workflowPrefix + "queue_url"

	queuePrefix                  = "queue."
	queueEndpoint                = queuePrefix + "endpoint"
	queueRegion                  = queuePrefix + "region"
	queueAccessKey               = queuePrefix + "access_key"
	queueSecretKey               = queuePrefix + "secret_key"
	queueVisibilityTimeoutSecond = queuePrefix + "visibility_timeout_second"

	// worker polling
	pollingPrefix      = "polling."
	pollingMode        = pollingPrefix + "mode"
	pollingMaxMessages = pollingPrefix + "max_messages"
	pollingWaitTime    = pollingPrefix + "wait_time_second"
	pollingExitAfter   = pollingPrefix + "exit_after_completion"

	// scheduler
	schedulerPrefix                = "scheduler."
	schedulerTickIntervalSecond    = schedulerPrefix + "tick_interval_second"
	schedulerCleanupIntervalMinute = schedulerPrefix + "cleanup_interval_minute"

	// crypto (db-backed secret store)
	cryptoPrefix = "crypto."
	cryptoEnable = cryptoPrefix + "enable"
	cryptoKey    = cryptoPrefix + "key"

	// external secret store
	secretsPrefix   = "secrets."
	secretsEndpoint = secretsPrefix + "endpoint"
	secretsRegion   = secretsPrefix + "region"

	// llm
	llmPrefix  = "llm."
	llmModel   = llmPrefix + "model"
	llmBaseURL = llmPrefix + "base_url"

	// browser
	browserPrefix        = "browser."
	browserHeadless      = browserPrefix + "headless"
	browserBrightDataURL = browserPrefix + "bright_data_url"

	// health/metrics listener
	healthCheckPrefix = "health_check."
	healthCheckEnable = healthCheckPrefix + "enable"
	healthCheckPort   = healthCheckPrefix + "port"

	// log
	logPrefix = "log."
	logLevel  = logPrefix + "level"
)

func GetDBHost() string {
	return getString(dbHost, "localhost")
}

func GetDBPort() int {
	return getInt(dbPort, 5432)
}

func GetDBName() string {
	return getString(dbName, "flow_builder")
}

func GetDBUser() string {
	return getString(dbUser, "")
}

func GetDBPassword() string {
	return getString(dbPassword, "")
}

// GetDBSslMode returns the postgres sslmode. "require" is the default;
// "disable" is for local development. DB_USE_SSL=false forces "disable".
func GetDBSslMode() string {
	if !getBool(dbUseSSL, true) {
		return "disable"
	}
	return getString(dbSSLMode, "require")
}

func GetDBMaxOpenConns() int {
	return getInt(dbMaxOpenConns, 10)
}

func GetDBMaxIdleConns() int {
	return getInt(dbMaxIdleConns, 5)
}

func GetDBMaxLifetimeSecond() int {
	return getInt(dbMaxLifetimeSecond, 1800)
}

func GetDBMaxIdleTimeSecond() int {
	return getInt(dbMaxIdleTimeSecond, 300)
}

func GetDBConnectTimeoutSecond() int {
	return getInt(dbConnectTimeoutSecond, 10)
}

func GetDBRequestTimeoutSecond() int {
	return getInt(dbRequestTimeoutSecond, 30)
}

func GetWorkflowQueueURL() string {
	return getString(workflowQueueURL, "")
}

func GetQueueEndpoint() string {
	return getString(queueEndpoint, "")
}

func GetQueueRegion() string {
	return getString(queueRegion, "us-east-1")
}

func GetQueueAccessKey() string {
	return getString(queueAccessKey, "test")
}

func GetQueueSecretKey() string {
	return getString(queueSecretKey, "test")
}

func GetQueueVisibilityTimeoutSecond() int {
	return getInt(queueVisibilityTimeoutSecond, 30)
}

// IsPollingMode reports whether the worker runs its long-poll loop.
// When false the worker processes a single pre-materialized message and exits.
func IsPollingMode() bool {
	return getBool(pollingMode, true)
}

func GetMaxPollMessages() int {
	return getInt(pollingMaxMessages, 5)
}

func GetPollWaitTimeSecond() int {
	return getInt(pollingWaitTime, 20)
}

func IsExitAfterCompletion() bool {
	return getBool(pollingExitAfter, false)
}

func GetSchedulerTickIntervalSecond() int {
	return getInt(schedulerTickIntervalSecond, 300)
}

func GetSchedulerCleanupIntervalMinute() int {
	return getInt(schedulerCleanupIntervalMinute, 60)
}

func IsCryptoEnable() bool {
	return getBool(cryptoEnable, false)
}

func GetCryptoKey() string {
	return getString(cryptoKey, "")
}

func GetSecretsEndpoint() string {
	return getString(secretsEndpoint, "")
}

func GetSecretsRegion() string {
	return getString(secretsRegion, "us-east-1")
}

func GetLLMModel() string {
	return getString(llmModel, "gpt-4o-mini")
}

func GetLLMBaseURL() string {
	return getString(llmBaseURL, "")
}

func IsBrowserHeadless() bool {
	return getBool(browserHeadless, true)
}

func GetBrightDataURL() string {
	return getString(browserBrightDataURL, "")
}

func IsHealthCheckEnabled() bool {
	return getBool(healthCheckEnable, true)
}

func GetHealthCheckPort() int {
	return getInt(healthCheckPort, 8081)
}

func GetLogLevel() string {
	return getString(logLevel, "info")
}
