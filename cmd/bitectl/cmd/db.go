package cmd

import (
	"github.com/bitelog/bite/internal/config"
	"github.com/bitelog/bite/internal/db"
	"github.com/jmoiron/sqlx"
)

func openDB() (*sqlx.DB, string, error) {
	driver, connection := config.Database()
	conn, err := db.Init(driver, connection)
	if err != nil {
		return nil, "", err
	}
	return conn, driver, nil
}
