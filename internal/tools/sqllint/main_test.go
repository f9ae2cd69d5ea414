package main

import (
	"strings"
	"testing"
)

const lintSource = "package q\n\n" +
	"const QGood = `--sql 3b0f6f0e-2c1d-4a8e-9f57-6d1c2b7a9e41\nselect 1;`\n\n" +
	"const QMissing = `select youtube_id from videos;`\n\n" +
	"const QDup = `--sql 3b0f6f0e-2c1d-4a8e-9f57-6d1c2b7a9e41\ninsert into videos values ($1);`\n\n" +
	"const NotSQL = \"hello world\"\n"

func TestCheckReportsMissingAndDuplicateMarkers(t *testing.T) {
	stmts, err := parseFile("q.go", lintSource)
	if err != nil {
		t.Fatalf("parseFile() error: %v", err)
	}
	if len(stmts) != 3 {
		t.Fatalf("expected 3 SQL statements, got %d", len(stmts))
	}

	violations := check(stmts)
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %+v", violations)
	}
	if violations[0].name != "QMissing" || !strings.Contains(violations[0].message, "missing") {
		t.Fatalf("unexpected first violation %+v", violations[0])
	}
	if violations[1].name != "QDup" || !strings.Contains(violations[1].message, "QGood") {
		t.Fatalf("unexpected second violation %+v", violations[1])
	}
}

func TestCollectRepositoryQueries(t *testing.T) {
	stmts, err := collect("../../sqlinline")
	if err != nil {
		t.Fatalf("collect() error: %v", err)
	}
	if len(stmts) == 0 {
		t.Fatal("expected queries in sqlinline")
	}
	if violations := check(stmts); len(violations) != 0 {
		t.Fatalf("sqlinline has marker violations: %+v", violations)
	}
}
