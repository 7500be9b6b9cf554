package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bluujobs/internal/app"
	"bluujobs/internal/config"
	"bluujobs/internal/store"
)

// keepOpen lets several commands share one memory backend.
type keepOpen struct {
	*store.MemoryKV
}

func (keepOpen) Close() error { return nil }

func testOptions() *RootOptions {
	kv := keepOpen{store.NewMemoryKV()}
	cfg := config.Config{
		Store: config.StoreConfig{Backend: config.BackendMemory, KeyPrefix: "cli_", MaxRetries: 5},
		Auth:  config.AuthConfig{BcryptCost: bcrypt.MinCost},
	}
	return &RootOptions{
		Open: func(ctx context.Context, logger *log.Logger) (*app.Container, error) {
			return app.Assemble(ctx, cfg, kv, nil, logger), nil
		},
	}
}

func run(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(opts)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "bluujobsctl", cmd.Use)

	for _, name := range []string{"seed", "reconcile", "stats", "export"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := run(t, testOptions(), "stats", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestSeedIsIdempotent(t *testing.T) {
	opts := testOptions()

	out, stderr, err := run(t, opts, "seed")
	require.NoError(t, err)
	assert.Equal(t, "seeded: 7\n", out)
	assert.Contains(t, stderr, "[Seed]")

	out, _, err = run(t, opts, "seed", "--format", "json")
	require.NoError(t, err)
	var res map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 0, res["seeded"])
}

func TestStats(t *testing.T) {
	opts := testOptions()
	_, _, err := run(t, opts, "seed")
	require.NoError(t, err)

	out, _, err := run(t, opts, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "users: 16\n")
	assert.Contains(t, out, "jobs: 10\n")
	assert.Contains(t, out, "category Electrical: 2\n")

	out, _, err = run(t, opts, "stats", "--format", "json")
	require.NoError(t, err)
	var st map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.EqualValues(t, 4, st["totalApplications"])
}

func TestReconcile(t *testing.T) {
	opts := testOptions()
	_, _, err := run(t, opts, "seed")
	require.NoError(t, err)

	out, _, err := run(t, opts, "reconcile", "--format", "json")
	require.NoError(t, err)
	var rep map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 3, rep["usersRated"])

	out, _, err = run(t, opts, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "users rated: 0\n")
}

func TestExport(t *testing.T) {
	opts := testOptions()

	out, _, err := run(t, opts, "export", "jobs")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out, "absent collections export as empty arrays")

	_, _, err = run(t, opts, "seed")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "reviews.json")
	_, _, err = run(t, opts, "export", "reviews", "-o", path)
	require.NoError(t, err)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var reviews []map[string]any
	require.NoError(t, json.Unmarshal(b, &reviews))
	assert.Len(t, reviews, 3)

	out, _, err = run(t, opts, "export", "users")
	require.NoError(t, err)
	assert.NotContains(t, out, "passwordHash")

	_, _, err = run(t, opts, "export", "passwords")
	assert.Error(t, err)

	_, _, err = run(t, opts, "export")
	assert.Error(t, err)
}
