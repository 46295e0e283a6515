package models

import "time"

type Compiler struct {
	ID         int        `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Languages  StringList `db:"languages" json:"languages"`
	SrcDate    *time.Time `db:"src_date" json:"src_date,omitempty"`
	Version    string     `db:"version" json:"version"`
	Repository string     `db:"repository" json:"repository,omitempty"`
}
