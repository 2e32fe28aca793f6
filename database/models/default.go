package models

import (
	"fmt"

	"github.com/disgoorg/snowflake/v2"
	"github.com/kamva/mgm/v3"
)

// DefaultModel keys documents by a string id: a guild or command snowflake,
// or a uuid for pending emojis.
type DefaultModel struct {
	ID             string `json:"id" bson:"_id,omitempty"`
	mgm.DateFields `bson:",inline"`
}

// PrepareID lets lookups pass snowflakes directly.
func (f *DefaultModel) PrepareID(id interface{}) (interface{}, error) {
	switch v := id.(type) {
	case string:
		return v, nil
	case snowflake.ID:
		return v.String(), nil
	default:
		return nil, fmt.Errorf("unsupported id type %T", id)
	}
}

func (f *DefaultModel) GetID() interface{} {
	return f.ID
}

func (f *DefaultModel) SetID(id interface{}) {
	if prepared, err := f.PrepareID(id); err == nil {
		f.ID = prepared.(string)
	}
}
