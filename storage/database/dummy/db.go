package dummydb

import (
	"sync"

	"github.com/trezcool/darasa/core/content"
)

type (
	DB struct {
		content *contentTable
	}

	contentTable struct {
		sync.RWMutex
		table map[string]*content.ContentRecord // keyed by course id
	}
)

func Open() (*DB, error) {
	db := &DB{
		content: &contentTable{table: make(map[string]*content.ContentRecord)},
	}
	return db, nil
}

// Reset drops all stored records. Test helper.
func (db *DB) Reset() {
	db.content.Lock()
	db.content.table = make(map[string]*content.ContentRecord)
	db.content.Unlock()
}
