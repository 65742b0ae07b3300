package postgres

import (
	"context"
	"time"

	"phoneGuide/business/advisor"
	"phoneGuide/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SearchRecord is the append-only audit row written after each completed
// search. History is observability for the client, never read on the
// recommendation path.
type SearchRecord struct {
	ID          uint              `gorm:"primaryKey;autoIncrement"`
	SessionID   string            `gorm:"column:session_id;type:text;index"`
	ClientID    string            `gorm:"column:client_id;type:text;index"`
	Preferences datatypes.JSONMap `gorm:"column:preferences"`
	ResultCount int               `gorm:"column:result_count"`
	TopModel    string            `gorm:"column:top_model;type:text"`
	ErrorText   string            `gorm:"column:error_text;type:text"`
	CreatedAt   time.Time         `gorm:"column:created_at"`
}

func (SearchRecord) TableName() string {
	return "search_history"
}

type SearchHistoryRepository struct {
	DB *gorm.DB
}

var _ advisor.SearchLog = (*SearchHistoryRepository)(nil)

func NewSearchHistoryRepository(db *gorm.DB) *SearchHistoryRepository {
	return &SearchHistoryRepository{DB: db}
}

// Migrate creates the search_history table.
func (r *SearchHistoryRepository) Migrate() error {
	return r.DB.AutoMigrate(&SearchRecord{})
}

func (r *SearchHistoryRepository) Record(ctx context.Context, entry advisor.SearchLogEntry) error {
	row := SearchRecord{
		SessionID:   entry.SessionID,
		ClientID:    entry.ClientID,
		Preferences: preferencesMap(entry.Preferences),
		ResultCount: entry.ResultCount,
		TopModel:    entry.TopModel,
		ErrorText:   entry.ErrorText,
		CreatedAt:   entry.CreatedAt,
	}
	return r.DB.WithContext(ctx).Create(&row).Error
}

// Recent returns the latest searches for a client, newest first.
func (r *SearchHistoryRepository) Recent(ctx context.Context, clientID string, limit int) ([]advisor.SearchLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []SearchRecord
	err := r.DB.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]advisor.SearchLogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, advisor.SearchLogEntry{
			SessionID:   row.SessionID,
			ClientID:    row.ClientID,
			Preferences: preferencesFromMap(row.Preferences),
			ResultCount: row.ResultCount,
			TopModel:    row.TopModel,
			ErrorText:   row.ErrorText,
			CreatedAt:   row.CreatedAt,
		})
	}

	return entries, nil
}

func preferencesMap(p domain.UserPreferences) datatypes.JSONMap {
	return datatypes.JSONMap{
		"budget":      p.Budget,
		"camera":      p.Camera,
		"battery":     p.Battery,
		"performance": p.Performance,
		"screenSize":  p.ScreenSize,
		"os":          p.OS,
	}
}

func preferencesFromMap(m datatypes.JSONMap) domain.UserPreferences {
	prefs := domain.UserPreferences{}
	if v, ok := m["budget"].(float64); ok {
		prefs.Budget = int(v)
	}
	if v, ok := m["camera"].(string); ok {
		prefs.Camera = v
	}
	if v, ok := m["battery"].(string); ok {
		prefs.Battery = v
	}
	if v, ok := m["performance"].(string); ok {
		prefs.Performance = v
	}
	if v, ok := m["screenSize"].(string); ok {
		prefs.ScreenSize = v
	}
	if v, ok := m["os"].(string); ok {
		prefs.OS = v
	}
	return prefs
}
