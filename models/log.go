package models

import (
	"time"
)

// RequestLog represents the request_log table in the database
type RequestLog struct {
	ID           int       `json:"id" db:"id_log"`
	Method       string    `json:"method" db:"method"`
	Path         string    `json:"path" db:"path"`
	StatusCode   int       `json:"status_code" db:"status_code"`
	ResponseTime *int      `json:"response_time" db:"response_time"`
	UserAgent    *string   `json:"user_agent" db:"user_agent"`
	IP           string    `json:"ip" db:"ip"`
	Body         *string   `json:"body" db:"body"`
	Query        *string   `json:"query" db:"query"`
	Subject      *string   `json:"subject" db:"subject"`
	LogLevel     string    `json:"log_level" db:"log_level"`
	Environment  string    `json:"environment" db:"environment"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
}

// Log level constants
const (
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
	LogLevelSuccess = "success"
)

// Environment constants
const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)
