package model

import (
	"time"

	"gorm.io/datatypes"
)

type Document struct {
	Id            string         `gorm:"type:varchar(64);primaryKey"`
	Link          string         `gorm:"type:text;not null;uniqueIndex"`
	Author        string         `gorm:"type:text"`
	Title         string         `gorm:"type:text;not null"`
	Topic         string         `gorm:"type:text"`
	Format        string         `gorm:"type:text"`
	FormatType    string         `gorm:"type:text"`
	Description   string         `gorm:"type:text"`
	Themes        datatypes.JSON `gorm:"type:jsonb"`
	Tags          datatypes.JSON `gorm:"type:jsonb"`
	ImageURL      string         `gorm:"type:text"`
	InvisibleText string         `gorm:"type:text"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}
