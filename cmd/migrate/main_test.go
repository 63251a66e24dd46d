package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/FoxShop/internal/pkg/database"
)

func TestMigrationURLs(t *testing.T) {
	src, dbURL, err := migrationURLs(database.Config{Driver: database.DriverMySQL, User: "shop", Password: "pw", Host: "db", Port: "3306", Name: "foxshop"})
	require.NoError(t, err)
	assert.Equal(t, "file://migrations/mysql", src)
	assert.Equal(t, "mysql://shop:pw@tcp(db:3306)/foxshop?multiStatements=true", dbURL)

	src, dbURL, err = migrationURLs(database.Config{Driver: database.DriverPostgres, User: "shop", Password: "p@ss", Host: "pg", Port: "5432", Name: "foxshop"})
	require.NoError(t, err)
	assert.Equal(t, "file://migrations/postgres", src)
	assert.Equal(t, "postgres://shop:p%40ss@pg:5432/foxshop?sslmode=disable", dbURL)

	_, _, err = migrationURLs(database.Config{Driver: database.DriverSQLite})
	assert.Error(t, err)
}
