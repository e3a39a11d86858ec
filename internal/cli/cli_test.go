package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"spelling-bee/internal/config"
	"spelling-bee/internal/roster"
	"spelling-bee/internal/storage"
)

type harness struct {
	cfg config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "admin.db")
	return &harness{cfg: cfg}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand(h.cfg, nil)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStudentsAddListDelete(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "students", "add", "Ann", "Hay", "4")
	require.NoError(t, err)
	assert.Equal(t, "Student added successfully (id 1)\n", out)

	_, err = h.run(t, "students", "add", "Bob", "Lincoln")
	require.NoError(t, err)

	_, err = h.run(t, "students", "add", "Cy", "Hay", "lots")
	assert.ErrorIs(t, err, roster.ErrValidation)

	out, err = h.run(t, "students", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Ann")
	assert.Contains(t, lines[2], "Bob")

	out, err = h.run(t, "students", "list", "--by-name")
	require.NoError(t, err)
	assert.Contains(t, strings.Split(out, "\n")[1], "Ann")

	out, err = h.run(t, "students", "delete", "1")
	require.NoError(t, err)
	assert.Equal(t, "Student deleted\n", out)

	_, err = h.run(t, "students", "delete", "1")
	assert.ErrorIs(t, err, roster.ErrStudentNotFound)
}

func TestImportCommand(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte("Alice,Lincoln,5\n,X,3\nBob,Hay\n"), 0o600))

	_, err := h.run(t, "import", path, "--strict")
	assert.ErrorIs(t, err, roster.ErrValidation)

	out, err := h.run(t, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "line 2 skipped")
	assert.Contains(t, out, "2 students added successfully")

	_, err = h.run(t, "import", filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestMaxNumberCommands(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "max-number", "get")
	require.NoError(t, err)
	assert.Equal(t, "100\n", out)

	_, err = h.run(t, "max-number", "set", "0")
	assert.ErrorIs(t, err, roster.ErrValidation)

	_, err = h.run(t, "max-number", "set", "25")
	require.NoError(t, err)

	out, err = h.run(t, "max-number", "get")
	require.NoError(t, err)
	assert.Equal(t, "25\n", out)
}

func TestEliminatedCommandListsSnapshots(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "students", "add", "Sam", "Lincoln", "3")
	require.NoError(t, err)

	repo, err := h.openForTest(t)
	require.NoError(t, err)
	_, err = roster.NewService(repo).Eliminate(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	out, err := h.run(t, "eliminated")
	require.NoError(t, err)
	assert.Contains(t, out, "Sam")
	assert.Contains(t, out, "Lincoln")
}

func TestHashPassword(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "hash-password", "letmein", "--cost", "4")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("letmein")))
}

func TestInvalidDriverIsRejected(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "--db-driver", "oracle", "students", "list")
	assert.ErrorContains(t, err, "unknown database driver")
}

func (h *harness) openForTest(t *testing.T) (roster.Repository, error) {
	t.Helper()
	return storage.Open(context.Background(), h.cfg)
}
