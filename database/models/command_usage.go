package models

import "github.com/kamva/mgm/v3"

type CommandUsage struct {
	DefaultModel `bson:",inline"`

	Count int64 `json:"count" bson:"count"`
}

func (usage *CommandUsage) CollectionName() string {
	return "command_usage"
}

func CommandUsageColl() *mgm.Collection {
	return mgm.Coll(&CommandUsage{})
}
