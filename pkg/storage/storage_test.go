// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

var errMockInsertFailed = errors.New("insert failed")

func TestDBClient_Statement_QueriesThroughRunner(t *testing.T) {
	db, mockDb, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}
	defer db.Close()

	mockDb.ExpectQuery("SELECT id FROM groups WHERE domain = \\$1").
		WithArgs("kth.se").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("prylen"))

	client := &DBClient{db: db, dbRunner: db}

	var id string
	row := client.Statement().Select("id").From("groups").Where("domain = ?", "kth.se").QueryRowContext(context.Background())
	if err := row.Scan(&id); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if id != "prylen" {
		t.Fatalf("expected id %q, got %q", "prylen", id)
	}

	if err := mockDb.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestDBClient_TxStatement_CommitsOnSuccess(t *testing.T) {
	db, mockDb, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}
	defer db.Close()

	mockDb.ExpectBegin()
	mockDb.ExpectExec("INSERT INTO groups").WillReturnResult(sqlmock.NewResult(1, 1))
	mockDb.ExpectCommit()

	client := &DBClient{db: db, dbRunner: db}

	tx, stmt, err := client.TxStatement(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if _, err := stmt.Insert("groups").Columns("id", "domain").Values("prylen", "kth.se").ExecContext(context.Background()); err != nil {
		t.Fatalf("expected no error inserting, got: %v", err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("expected no error committing, got: %v", err)
	}

	if err := mockDb.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestDBClient_TxStatement_RollsBackOnFailure(t *testing.T) {
	db, mockDb, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}
	defer db.Close()

	mockDb.ExpectBegin()
	mockDb.ExpectExec("INSERT INTO groups").WillReturnError(errMockInsertFailed)
	mockDb.ExpectRollback()

	client := &DBClient{db: db, dbRunner: db}

	tx, stmt, err := client.TxStatement(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if _, err := stmt.Insert("groups").Columns("id", "domain").Values("prylen", "kth.se").ExecContext(context.Background()); err == nil {
		t.Fatal("expected an error from the insert")
	}

	if err := tx.Rollback(); err != nil {
		t.Fatalf("expected no error rolling back, got: %v", err)
	}

	if err := mockDb.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestDBClient_Close_ClosesUnderlyingDB(t *testing.T) {
	db, mockDb, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}

	mockDb.ExpectClose()

	client := &DBClient{db: db}
	client.Close()

	if err := mockDb.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
