package mapper

import (
	"encoding/json"

	"learning-hub-be/internal/entity"
	"learning-hub-be/internal/model"

	"gorm.io/datatypes"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	return &entity.Document{
		Id:            d.Id,
		Link:          d.Link,
		Author:        d.Author,
		Title:         d.Title,
		Topic:         d.Topic,
		Format:        d.Format,
		FormatType:    d.FormatType,
		Description:   d.Description,
		Themes:        jsonToStrings(d.Themes),
		Tags:          jsonToStrings(d.Tags),
		ImageURL:      d.ImageURL,
		InvisibleText: d.InvisibleText,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	return &model.Document{
		Id:            d.Id,
		Link:          d.Link,
		Author:        d.Author,
		Title:         d.Title,
		Topic:         d.Topic,
		Format:        d.Format,
		FormatType:    d.FormatType,
		Description:   d.Description,
		Themes:        stringsToJSON(d.Themes),
		Tags:          stringsToJSON(d.Tags),
		ImageURL:      d.ImageURL,
		InvisibleText: d.InvisibleText,
	}
}

func (m *DocumentMapper) ToEntities(docs []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

func jsonToStrings(data datatypes.JSON) []string {
	if len(data) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return []string{}
	}
	return out
}

func stringsToJSON(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}
