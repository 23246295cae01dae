package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wisefido-biomed/internal/models"
)

// AlarmEventsRepository 报警事件仓库（biomed_alarm_events 表）
type AlarmEventsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlarmEventsRepository 创建报警事件仓库
func NewAlarmEventsRepository(db *sql.DB, logger *zap.Logger) *AlarmEventsRepository {
	return &AlarmEventsRepository{
		db:     db,
		logger: logger,
	}
}

// CreateAlarmEvent 写入一条报警事件
//
// event_id 为空时自动生成 UUID；triggered_at 为零值时取当前时间。
func (r *AlarmEventsRepository) CreateAlarmEvent(ctx context.Context, event *models.AlarmEvent) error {
	if event == nil {
		return fmt.Errorf("event is required")
	}
	if event.TeamID == "" {
		return fmt.Errorf("team_id is required")
	}
	if event.FFID == "" {
		return fmt.Errorf("ff_id is required")
	}
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}

	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.TriggeredAt.IsZero() {
		event.TriggeredAt = time.Now().UTC()
	}

	query := `
		INSERT INTO biomed_alarm_events (
			event_id,
			team_id,
			ff_id,
			event_type,
			severity,
			message,
			trigger_data,
			triggered_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := r.db.ExecContext(ctx,
		query,
		event.EventID,
		event.TeamID,
		event.FFID,
		event.EventType,
		event.Severity,
		event.Message,
		[]byte(event.TriggerData),
		event.TriggeredAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create alarm event: %w", err)
	}

	return nil
}

// ListRecentAlarmEvents 查询某队员最近的报警事件（按触发时间倒序）
func (r *AlarmEventsRepository) ListRecentAlarmEvents(ctx context.Context, teamID, ffID string, limit int) ([]*models.AlarmEvent, error) {
	if teamID == "" {
		return nil, fmt.Errorf("team_id is required")
	}
	if ffID == "" {
		return nil, fmt.Errorf("ff_id is required")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT
			event_id,
			team_id,
			ff_id,
			event_type,
			severity,
			message,
			trigger_data,
			triggered_at
		FROM biomed_alarm_events
		WHERE team_id = $1
		  AND ff_id = $2
		ORDER BY triggered_at DESC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, teamID, ffID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alarm events: %w", err)
	}
	defer rows.Close()

	var events []*models.AlarmEvent
	for rows.Next() {
		var event models.AlarmEvent
		var triggerData []byte

		if err := rows.Scan(
			&event.EventID,
			&event.TeamID,
			&event.FFID,
			&event.EventType,
			&event.Severity,
			&event.Message,
			&triggerData,
			&event.TriggeredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alarm event: %w", err)
		}
		event.TriggerData = triggerData
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alarm events: %w", err)
	}

	return events, nil
}

// CountAlarmEventsSince 统计某队员自指定时间以来的报警数（监控用）
func (r *AlarmEventsRepository) CountAlarmEventsSince(ctx context.Context, teamID, ffID string, since time.Time) (int, error) {
	if teamID == "" {
		return 0, fmt.Errorf("team_id is required")
	}
	if ffID == "" {
		return 0, fmt.Errorf("ff_id is required")
	}

	query := `
		SELECT COUNT(*)
		FROM biomed_alarm_events
		WHERE team_id = $1
		  AND ff_id = $2
		  AND triggered_at >= $3
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, teamID, ffID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count alarm events: %w", err)
	}

	return count, nil
}
