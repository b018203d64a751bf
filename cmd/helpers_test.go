package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const bundle042 = `{
  "number": "42",
  "publication_date": "12/02/2016",
  "parts": [{
    "episode_id": "Ep042",
    "duration": "1:02:05",
    "info": "Ep042: Ondas gravitacionales\n-LIGO detecta la fusión (1:05)\n-Preguntas de los oyentes (45:10)\nContertulios: Héctor Socas, Sara Robisco."
  }]
}`

// writeSettings creates a settings file pointing the database and the
// dataset into a fresh temp dir
func writeSettings(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	content := fmt.Sprintf(`database:
  path: %s
export:
  path: %s
sources:
  boilerplate_path: %s
normalizer:
  threshold: 0.88
processing:
  workers: 2
`,
		filepath.Join(dir, "coffeebreak.db"),
		filepath.Join(dir, "master_dataset.json"),
		filepath.Join(dir, "boilerplate.yaml"),
	)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path, dir
}

// resetFlags puts every flag back to its default; the command tree is shared
// between tests
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func executeCommandContext(ctx context.Context, args ...string) (string, error) {
	cmd := NewRootCmd()
	resetFlags(cmd)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	cmd.SetContext(ctx)

	err := cmd.Execute()
	return buf.String(), err
}

func executeCommand(args ...string) (string, error) {
	return executeCommandContext(context.Background(), args...)
}
