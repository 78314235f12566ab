package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	ErrNotFound = errors.New("not found")
)

// Open abre un pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables (ajustable luego)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// inClause arma "IN ($n,$n+1,...)" para values, agregándolos a args.
// Devuelve el fragmento y el siguiente índice de placeholder.
func inClause(values []string, args *[]any, argN int) (string, int) {
	placeholders := make([]string, 0, len(values))
	for _, v := range values {
		placeholders = append(placeholders, fmt.Sprintf("$%d", argN))
		*args = append(*args, v)
		argN++
	}
	return "(" + strings.Join(placeholders, ",") + ")", argN
}
