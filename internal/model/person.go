// Copyright (c) 2025 River Szasz
// psqlite - encrypted single-table persistence for SQLite
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the typed boundary records stored through the
// db package. Person is the canonical example: one text primary key and
// three further columns.
package model // import "github.com/River-Szasz/psqlite-sqlcipher/internal/model"

import (
	"github.com/River-Szasz/psqlite-sqlcipher/internal/db"
)

// Person is the application-level record shape the store demo works
// with. The marshalling contract is ToRecord/PersonFromRecord.
type Person struct {
	ID       string
	Name     string
	LastName string
	Age      int64
}

// PersonSchema returns the table schema for persons: a text primary key
// plus name, last name and age.
func PersonSchema() (*db.TableSchema, error) {
	return db.NewTableSchema("persons",
		db.Column{Name: "id", Type: db.TypeText, PrimaryKey: true},
		db.Column{Name: "name", Type: db.TypeText},
		db.Column{Name: "lastName", Type: db.TypeText},
		db.Column{Name: "age", Type: db.TypeInteger},
	)
}

// ToRecord encodes the person into the generic record form.
func (p Person) ToRecord() db.Record {
	return db.Record{
		"id":       db.Text(p.ID),
		"name":     db.Text(p.Name),
		"lastName": db.Text(p.LastName),
		"age":      db.Int(p.Age),
	}
}

// PersonFromRecord decodes a person from the generic record form.
// Null columns decode to the field's zero value.
func PersonFromRecord(rec db.Record) Person {
	return Person{
		ID:       rec.Get("id").TextValue(),
		Name:     rec.Get("name").TextValue(),
		LastName: rec.Get("lastName").TextValue(),
		Age:      rec.Get("age").IntValue(),
	}
}
