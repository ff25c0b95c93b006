// Package inmemdb keeps users in memory. It backs unit tests & local experiments that need no database.
package inmemdb

import (
	"sync"

	"github.com/Efemena-10Alytics/Open-Programmes-backend-sub001/core/user"
)

type (
	DB struct {
		user *userTable
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		user: &userTable{table: make(map[string]*user.User)},
	}
}
