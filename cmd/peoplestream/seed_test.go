package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	perrors "github.com/sirseerhq/peoplestream/internal/errors"
	"github.com/sirseerhq/peoplestream/internal/source"
	"github.com/sirseerhq/peoplestream/internal/testutil"
)

func TestRunSeed(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "people.db")

	var errOut bytes.Buffer
	if err := runSeed(ctx, dsn, 25, &errOut); err != nil {
		t.Fatalf("runSeed() error = %v", err)
	}
	testutil.AssertContainsString(t, errOut.String(), "Successfully seeded 25 people")

	// Seeding again replaces rows instead of duplicating them.
	if err := runSeed(ctx, dsn, 25, &errOut); err != nil {
		t.Fatalf("second runSeed() error = %v", err)
	}

	db, err := source.OpenSQLite(ctx, dsn)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer db.Close()

	ps, err := source.Collect(ctx, db, " ")
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	testutil.AssertPeople(t, ps, source.DemoPeople(25))
}

func TestRunSeed_Errors(t *testing.T) {
	ctx := context.Background()

	if err := runSeed(ctx, filepath.Join(t.TempDir(), "x.db"), -1, &bytes.Buffer{}); !errors.Is(err, perrors.ErrValidation) {
		t.Errorf("negative count error = %v, want ErrValidation", err)
	}
	if err := runSeed(ctx, "", 1, &bytes.Buffer{}); !errors.Is(err, perrors.ErrInvalidConfig) {
		t.Errorf("empty dsn error = %v, want ErrInvalidConfig", err)
	}
}
