package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/outliner/internal/docstore"
	"github.com/roach88/outliner/internal/model"
	"github.com/roach88/outliner/internal/registry"
	"github.com/roach88/outliner/internal/testutil"
)

// testCLI runs commands against a private data directory. Ids and clocks
// are shared across invocations so output is deterministic.
type testCLI struct {
	t       *testing.T
	dataDir string
	env     map[string]string

	storeClock *testutil.DeterministicClock
	storeIDs   *testutil.SequentialIDs
	regClock   *testutil.DeterministicClock
	regIDs     *testutil.SequentialIDs
}

type result struct {
	Stdout string
	Stderr string
	Code   int
}

// testResponse mirrors CLIResponse with an undecoded payload.
type testResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	return &testCLI{
		t:          t,
		dataDir:    filepath.Join(t.TempDir(), "data"),
		env:        map[string]string{},
		storeClock: testutil.NewDeterministicClock(),
		storeIDs:   testutil.NewSequentialIDs(""),
		regClock:   testutil.NewDeterministicClock(),
		regIDs:     testutil.NewSequentialIDs("db-"),
	}
}

func (c *testCLI) run(args ...string) result {
	c.t.Helper()
	opts := &RootOptions{
		Env: c.env,
		StoreOptions: []docstore.Option{
			docstore.WithClock(c.storeClock.Now),
			docstore.WithIDGenerator(c.storeIDs),
		},
		RegistryOptions: []registry.Option{
			registry.WithClock(c.regClock.Now),
			registry.WithIDGenerator(c.regIDs),
		},
	}
	var stdout, stderr bytes.Buffer
	args = append([]string{"--data-dir", c.dataDir}, args...)
	code := execute(context.Background(), opts, args, &stdout, &stderr)
	return result{Stdout: stdout.String(), Stderr: stderr.String(), Code: code}
}

// runJSON runs a command with --format json and decodes the response.
func (c *testCLI) runJSON(args ...string) (testResponse, int) {
	c.t.Helper()
	res := c.run(append([]string{"--format", "json"}, args...)...)
	var resp testResponse
	require.NoError(c.t, json.Unmarshal([]byte(res.Stdout), &resp), "stdout: %s\nstderr: %s", res.Stdout, res.Stderr)
	return resp, res.Code
}

// mustJSON runs a command that must succeed and decodes its data into out.
func (c *testCLI) mustJSON(out any, args ...string) {
	c.t.Helper()
	resp, code := c.runJSON(args...)
	require.Equal(c.t, ExitSuccess, code, "error: %+v", resp.Error)
	require.Equal(c.t, "ok", resp.Status)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(resp.Data, out))
	}
}

// mustFail runs a command that must fail and returns the error code.
func (c *testCLI) mustFail(wantExit int, args ...string) *CLIError {
	c.t.Helper()
	resp, code := c.runJSON(args...)
	require.Equal(c.t, wantExit, code)
	require.Equal(c.t, "error", resp.Status)
	require.NotNil(c.t, resp.Error)
	return resp.Error
}

func (c *testCLI) createDB(name string) model.DatabaseEntry {
	c.t.Helper()
	var entry model.DatabaseEntry
	c.mustJSON(&entry, "db", "create", name)
	return entry
}

func (c *testCLI) createPage(db, title string) model.Page {
	c.t.Helper()
	var page model.Page
	c.mustJSON(&page, "page", "create", "--db", db, title)
	return page
}

func (c *testCLI) createBlock(db, parentFlag, parentID, content string, position int) model.Block {
	c.t.Helper()
	var block model.Block
	c.mustJSON(&block, "block", "create", "--db", db, parentFlag, parentID,
		"--position", strconv.Itoa(position), content)
	return block
}
