package models

// SchemaMeta is the single-row table holding the on-disk schema version.
type SchemaMeta struct {
	ID      uint `gorm:"primaryKey"`
	Version int  `gorm:"not null"`
}

func (SchemaMeta) TableName() string {
	return "schema_meta"
}
