package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/kingdomhospital/hospital-api/database"
	"github.com/kingdomhospital/hospital-api/models"
)

// GetLogs lists request logs with optional filters and pagination
func GetLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	var conditions []string
	var args []interface{}
	argIndex := 1

	if logLevel := c.Query("log_level"); logLevel != "" {
		conditions = append(conditions, fmt.Sprintf("log_level = $%d", argIndex))
		args = append(args, logLevel)
		argIndex++
	}
	if method := c.Query("method"); method != "" {
		conditions = append(conditions, fmt.Sprintf("method = $%d", argIndex))
		args = append(args, method)
		argIndex++
	}
	if statusCode := c.Query("status_code"); statusCode != "" {
		if code, err := strconv.Atoi(statusCode); err == nil {
			conditions = append(conditions, fmt.Sprintf("status_code = $%d", argIndex))
			args = append(args, code)
			argIndex++
		}
	}
	if subject := c.Query("subject"); subject != "" {
		conditions = append(conditions, fmt.Sprintf("subject ILIKE $%d", argIndex))
		args = append(args, "%"+subject+"%")
		argIndex++
	}
	if ip := c.Query("ip"); ip != "" {
		conditions = append(conditions, fmt.Sprintf("ip = $%d", argIndex))
		args = append(args, ip)
		argIndex++
	}
	if path := c.Query("path"); path != "" {
		conditions = append(conditions, fmt.Sprintf("path ILIKE $%d", argIndex))
		args = append(args, "%"+path+"%")
		argIndex++
	}
	if from := c.Query("from"); from != "" {
		conditions = append(conditions, fmt.Sprintf("timestamp >= $%d", argIndex))
		args = append(args, from)
		argIndex++
	}
	if to := c.Query("to"); to != "" {
		conditions = append(conditions, fmt.Sprintf("timestamp <= $%d::date + interval '1 day'", argIndex))
		args = append(args, to)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	err := database.GetDB().QueryRow(context.Background(),
		"SELECT COUNT(*) FROM request_log"+whereClause, args...).Scan(&total)
	if err != nil {
		return respondError(c, 500, "F92", "Error counting logs")
	}

	query := fmt.Sprintf(`SELECT id_log, method, path, status_code, response_time, user_agent, ip,
		body, query, subject, log_level, environment, timestamp
		FROM request_log%s ORDER BY timestamp DESC LIMIT $%d OFFSET $%d`,
		whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := database.GetDB().Query(context.Background(), query, args...)
	if err != nil {
		return respondError(c, 500, "F92", "Error fetching logs")
	}
	defer rows.Close()

	var logs []models.RequestLog
	for rows.Next() {
		var l models.RequestLog
		if err := rows.Scan(&l.ID, &l.Method, &l.Path, &l.StatusCode, &l.ResponseTime, &l.UserAgent,
			&l.IP, &l.Body, &l.Query, &l.Subject, &l.LogLevel, &l.Environment, &l.Timestamp); err != nil {
			continue
		}
		logs = append(logs, l)
	}

	return respond(c, 200, "S92", fiber.Map{
		"logs":  logs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetLogStats summarizes the request log by level and method
func GetLogStats(c *fiber.Ctx) error {
	ctx := context.Background()

	stats := fiber.Map{}

	var total int
	if err := database.GetDB().QueryRow(ctx, "SELECT COUNT(*) FROM request_log").Scan(&total); err != nil {
		return respondError(c, 500, "F92", "Error fetching log statistics")
	}
	stats["total"] = total

	byLevel := map[string]int{}
	rows, err := database.GetDB().Query(ctx,
		"SELECT log_level, COUNT(*) FROM request_log GROUP BY log_level")
	if err == nil {
		for rows.Next() {
			var level string
			var count int
			if err := rows.Scan(&level, &count); err == nil {
				byLevel[level] = count
			}
		}
		rows.Close()
	}
	stats["by_level"] = byLevel

	byMethod := map[string]int{}
	rows, err = database.GetDB().Query(ctx,
		"SELECT method, COUNT(*) FROM request_log GROUP BY method")
	if err == nil {
		for rows.Next() {
			var method string
			var count int
			if err := rows.Scan(&method, &count); err == nil {
				byMethod[method] = count
			}
		}
		rows.Close()
	}
	stats["by_method"] = byMethod

	var avgResponse *float64
	if err := database.GetDB().QueryRow(ctx,
		"SELECT AVG(response_time) FROM request_log WHERE response_time IS NOT NULL").Scan(&avgResponse); err == nil && avgResponse != nil {
		stats["avg_response_time_ms"] = *avgResponse
	}

	return respond(c, 200, "S92", fiber.Map{"stats": stats})
}
