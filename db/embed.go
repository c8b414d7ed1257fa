// Package db provides the embedded database schema and the canonical
// product catalog seed data.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// Products contains the canonical product catalog as JSON. It is both the
// source for the static in-memory catalog and the input for cmd/seed-db.
//
//go:embed seed/products.json
var Products []byte
