package bundle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepdefend/bkpops/internal/config"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

// producingAction writes the declared output, mimicking a bundler.
func producingAction(ran *[]string) Action {
	return func(_ context.Context, stage Stage) error {
		*ran = append(*ran, stage.Name)
		return os.WriteFile(stage.Output, []byte("artifact"), 0o644)
	}
}

func TestRun_AllStagesInOrder(t *testing.T) {
	dir := t.TempDir()
	in := touch(t, filepath.Join(dir, "clnt"))
	mid := filepath.Join(dir, "agent-package")
	out := filepath.Join(dir, "installer-package")

	var ran []string
	stages := []Stage{
		{Name: "agent-package", Inputs: []string{in}, Output: mid, Action: producingAction(&ran)},
		{Name: "installer-package", Inputs: []string{mid}, Output: out, Action: producingAction(&ran)},
	}

	err := Run(context.Background(), stages)

	require.NoError(t, err)
	assert.Equal(t, []string{"agent-package", "installer-package"}, ran)
	assert.FileExists(t, out)
}

func TestRun_MissingInputFailsFast(t *testing.T) {
	dir := t.TempDir()

	var ran []string
	stages := []Stage{
		{
			Name:   "agent-package",
			Inputs: []string{filepath.Join(dir, "absent")},
			Output: filepath.Join(dir, "agent-package"),
			Action: producingAction(&ran),
		},
		{
			Name:   "installer-package",
			Inputs: []string{filepath.Join(dir, "agent-package")},
			Output: filepath.Join(dir, "installer-package"),
			Action: producingAction(&ran),
		},
	}

	err := Run(context.Background(), stages)

	require.Error(t, err)
	var mie *MissingInputError
	require.ErrorAs(t, err, &mie)
	assert.Equal(t, "agent-package", mie.Stage)
	assert.Contains(t, mie.Path, "absent")
	assert.Empty(t, ran, "no action may run once a precondition fails")
}

func TestRun_LaterStageMissingInputStopsPipeline(t *testing.T) {
	dir := t.TempDir()
	in := touch(t, filepath.Join(dir, "clnt"))

	var ran []string
	stages := []Stage{
		{Name: "agent-package", Inputs: []string{in}, Output: filepath.Join(dir, "agent-package"), Action: producingAction(&ran)},
		{Name: "installer-package", Inputs: []string{filepath.Join(dir, "never-built")}, Output: filepath.Join(dir, "out"), Action: producingAction(&ran)},
	}

	err := Run(context.Background(), stages)

	require.Error(t, err)
	var mie *MissingInputError
	require.ErrorAs(t, err, &mie)
	assert.Equal(t, "installer-package", mie.Stage)
	assert.Equal(t, []string{"agent-package"}, ran)
}

func TestRun_ActionFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	in := touch(t, filepath.Join(dir, "clnt"))

	bundlerErr := errors.New("tool exploded")
	stages := []Stage{
		{
			Name:   "agent-package",
			Inputs: []string{in},
			Output: filepath.Join(dir, "agent-package"),
			Action: func(context.Context, Stage) error { return bundlerErr },
		},
	}

	err := Run(context.Background(), stages)

	require.Error(t, err)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "agent-package", se.Stage)
	assert.ErrorIs(t, err, bundlerErr)
}

func TestCommandAction_ExitCodeSurfaced(t *testing.T) {
	dir := t.TempDir()
	in := touch(t, filepath.Join(dir, "clnt"))

	// sh -c 'exit 3' ignores the appended -o/input arguments.
	action := CommandAction("sh", []string{"-c", "exit 3"})
	stages := []Stage{
		{Name: "agent-package", Inputs: []string{in}, Output: filepath.Join(dir, "agent-package"), Action: action},
	}

	err := Run(context.Background(), stages)

	require.Error(t, err)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 3, se.ExitCode)
}

func TestCommandAction_MissingOutputIsAFailure(t *testing.T) {
	dir := t.TempDir()
	in := touch(t, filepath.Join(dir, "clnt"))

	// Succeeds but produces nothing.
	action := CommandAction("true", nil)
	err := Run(context.Background(), []Stage{
		{Name: "agent-package", Inputs: []string{in}, Output: filepath.Join(dir, "agent-package"), Action: action},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "output")
}

func TestValidateChain(t *testing.T) {
	ok := []Stage{
		{Name: "a", Inputs: []string{"clnt"}, Output: "agent-package"},
		{Name: "b", Inputs: []string{"agent-package", "nssm.exe"}, Output: "installer"},
	}
	assert.NoError(t, ValidateChain(ok))

	broken := []Stage{
		{Name: "a", Inputs: []string{"clnt"}, Output: "agent-package"},
		{Name: "b", Inputs: []string{"unrelated"}, Output: "installer"},
	}
	err := ValidateChain(broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not consume")
}

func TestAgentStages_ChainIsExplicit(t *testing.T) {
	cfg := config.BuildConfig{
		Bundler:          "bundlebin",
		DistDir:          "dist",
		AgentBinary:      "build/clnt",
		BackupTool:       "third_party/restic",
		AssetsDir:        "static",
		AgentPackage:     "clnt-bundle",
		SecurityAgent:    "third_party/wazuh-agent.deb",
		ServiceManager:   "third_party/nssm.exe",
		InstallerPackage: "deepdefend-installer",
	}

	stages := AgentStages(cfg)

	require.Len(t, stages, 2)
	assert.Equal(t, "agent-package", stages[0].Name)
	assert.Equal(t, []string{"build/clnt", "third_party/restic", "static"}, stages[0].Inputs)
	assert.Equal(t, filepath.Join("dist", "clnt-bundle"), stages[0].Output)

	assert.Equal(t, "installer-package", stages[1].Name)
	// The first chain's output is a declared input of the second.
	assert.Contains(t, stages[1].Inputs, filepath.Join("dist", "clnt-bundle"))
	assert.NoError(t, ValidateChain(stages))
}
