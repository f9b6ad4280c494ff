// Package postgres implements the store interfaces using a PostgreSQL
// database accessed through database/sql with the pgx stdlib driver.
// Schema migrations are embedded and applied with goose at startup.
package postgres
