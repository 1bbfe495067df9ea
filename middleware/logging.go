package middleware

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kingdomhospital/hospital-api/database"
	"github.com/kingdomhospital/hospital-api/models"
)

// LoggingMiddleware records every HTTP request in the request_log table
func LoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		responseTime := int(time.Since(start).Milliseconds())
		entry := createLogEntry(c, responseTime)

		// Persist asynchronously so logging never delays the response
		go saveLogToDB(entry)

		return err
	}
}

func createLogEntry(c *fiber.Ctx, responseTime int) models.RequestLog {
	var subject *string
	if s := c.Locals("subject"); s != nil {
		if str, ok := s.(string); ok {
			subject = &str
		}
	}

	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = strings.Split(forwarded, ",")[0]
	}

	var userAgent *string
	if ua := c.Get("User-Agent"); ua != "" {
		userAgent = &ua
	}

	var body *string
	if c.Method() == "POST" || c.Method() == "PUT" || c.Method() == "PATCH" {
		if b := string(c.Body()); b != "" {
			filtered := filterSensitiveData(b)
			body = &filtered
		}
	}

	var query *string
	if q := string(c.Request().URI().QueryString()); q != "" {
		query = &q
	}

	return models.RequestLog{
		Method:       c.Method(),
		Path:         c.Path(),
		StatusCode:   c.Response().StatusCode(),
		ResponseTime: &responseTime,
		UserAgent:    userAgent,
		IP:           ip,
		Body:         body,
		Query:        query,
		Subject:      subject,
		LogLevel:     determineLogLevel(c.Response().StatusCode()),
		Environment:  getEnvironment(),
	}
}

// filterSensitiveData masks credential fields before the body is stored
func filterSensitiveData(body string) string {
	sensitiveFields := []string{"password", "token", "access_token"}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		if len(body) > 1000 {
			return body[:1000] + "...[truncated]"
		}
		return body
	}

	for _, field := range sensitiveFields {
		if _, exists := data[field]; exists {
			data[field] = "[FILTERED]"
		}
	}

	filteredJSON, _ := json.Marshal(data)
	filtered := string(filteredJSON)
	if len(filtered) > 1000 {
		return filtered[:1000] + "...[truncated]"
	}
	return filtered
}

func determineLogLevel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return models.LogLevelSuccess
	case statusCode >= 400 && statusCode < 500:
		return models.LogLevelWarning
	case statusCode >= 500:
		return models.LogLevelError
	default:
		return models.LogLevelInfo
	}
}

func saveLogToDB(entry models.RequestLog) {
	db := database.GetDB()
	if db == nil {
		log.Println("Request log dropped: no database connection")
		return
	}

	_, err := db.Exec(context.Background(),
		`INSERT INTO request_log (method, path, status_code, response_time, user_agent, ip, body, query, subject, log_level, environment, timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		entry.Method,
		entry.Path,
		entry.StatusCode,
		entry.ResponseTime,
		entry.UserAgent,
		entry.IP,
		entry.Body,
		entry.Query,
		entry.Subject,
		entry.LogLevel,
		entry.Environment,
		time.Now(),
	)
	if err != nil {
		log.Printf("Error saving request log: %v", err)
	}
}

// LogEvent records a domain event (entity created, updated, deleted)
func LogEvent(level, message, subject string, details map[string]interface{}) {
	entry := models.RequestLog{
		Method:      "EVENT",
		Path:        "/event",
		StatusCode:  200,
		IP:          "127.0.0.1",
		LogLevel:    level,
		Environment: getEnvironment(),
	}

	if subject != "" {
		entry.Subject = &subject
	}

	if details != nil {
		details["message"] = message
		bodyJSON, _ := json.Marshal(details)
		bodyStr := string(bodyJSON)
		entry.Body = &bodyStr
	} else {
		entry.Body = &message
	}

	go saveLogToDB(entry)
}

func getEnvironment() string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = models.EnvironmentDevelopment
	}
	return env
}
