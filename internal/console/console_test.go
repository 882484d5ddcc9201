package console

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timzifer/string_queue/internal/config"
)

func newInterpreter(t *testing.T) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return New(context.Background(), &out, config.Default()), &out
}

func run(t *testing.T, in *Interpreter, script string) {
	t.Helper()
	require.NoError(t, in.Run(strings.NewReader(script)))
}

func TestTraces(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.cmd"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()

			in, out := newInterpreter(t)
			require.NoError(t, in.Run(f))
			assert.Zero(t, in.Errors(), out.String())
			assert.NoError(t, in.Close())
		})
	}
}

func TestSortExample(t *testing.T) {
	in, out := newInterpreter(t)
	run(t, in, "new\nit banana\nit apple\nit cherry\nsort\nshow\nrh\nsize\n")

	assert.Zero(t, in.Errors())
	assert.Contains(t, out.String(), "q = [apple banana cherry]")
	assert.Contains(t, out.String(), "Removed apple from queue")
	assert.Contains(t, out.String(), "Queue size = 2")
	assert.NoError(t, in.Close())
}

func TestReverseExample(t *testing.T) {
	in, out := newInterpreter(t)
	run(t, in, "new\nih a\nih b\nshow\nreverse\nshow\n")

	assert.Zero(t, in.Errors())
	assert.Contains(t, out.String(), "q = [b a]\nq = [a b]\n")
	tail, ok := in.Queue().Tail()
	assert.True(t, ok)
	assert.Equal(t, "b", tail)
}

func TestMismatchesAreCounted(t *testing.T) {
	in, out := newInterpreter(t)
	run(t, in, "new\nit x\nrh y\nsize 3\nrh\nbogus\n")

	assert.Equal(t, 4, in.Errors())
	assert.Contains(t, out.String(), `removed value "x", expected "y"`)
	assert.Contains(t, out.String(), "size is 0, expected 3")
	assert.Contains(t, out.String(), "queue is empty")
	assert.Contains(t, out.String(), `unknown command "bogus"`)
}

func TestCommandsWithoutQueue(t *testing.T) {
	in, out := newInterpreter(t)
	run(t, in, "ih a\nrh\nsort\nreverse\nshow\nsize 0\n")

	assert.Equal(t, 4, in.Errors())
	assert.Contains(t, out.String(), "no queue, run new first")
	assert.Contains(t, out.String(), "q = NULL")
}

func TestTruncatedRemoval(t *testing.T) {
	in, out := newInterpreter(t)
	run(t, in, "new\nit hello\noption length 3\nrh\n")

	assert.Zero(t, in.Errors())
	assert.Contains(t, out.String(), "Removed he from queue")
}

func TestQuitStopsReading(t *testing.T) {
	in, _ := newInterpreter(t)
	run(t, in, "new\nquit\nit never\n")

	assert.Equal(t, 0, in.Queue().Size())
}

func TestOptions(t *testing.T) {
	in, out := newInterpreter(t)
	run(t, in, "option echo true\noption verbose 1\nnew\nit a\noption\noption fail 200\noption colour blue\noption length -1\n")

	assert.Equal(t, 3, in.Errors())
	assert.Contains(t, out.String(), "cmd> it a\nq = [a]\n")
	assert.Contains(t, out.String(), "fail\t0\nlength\t1024\nverbose\ttrue\necho\ttrue\n")
	assert.Contains(t, out.String(), "out of range")
	assert.Contains(t, out.String(), `unknown option "colour"`)
}

func TestCloseReportsNothingAfterFree(t *testing.T) {
	in, _ := newInterpreter(t)
	run(t, in, "new\nit a 5\n")

	assert.NoError(t, in.Close())
	assert.Nil(t, in.Queue())
}

func TestHelpListsCommands(t *testing.T) {
	in, out := newInterpreter(t)
	run(t, in, "help\n")

	for name := range commands {
		assert.Contains(t, out.String(), commands[name].usage)
	}
}

func TestStatsReportsRefusedAllocations(t *testing.T) {
	in, out := newInterpreter(t)
	run(t, in, "new\nit a\noption fail 100\nit x\noption fail 0\nstats\n")

	assert.Zero(t, in.Errors())
	assert.Contains(t, out.String(), `insertion of "x" refused`)
	assert.Contains(t, out.String(), "failures 1 live 3")

	snap := in.Stats()
	assert.Equal(t, uint64(1), snap.Failures)
	assert.Equal(t, uint64(3), snap.Reserved)
	assert.Zero(t, snap.Released)

	require.NoError(t, in.Close())
	snap = in.Stats()
	assert.Equal(t, snap.Reserved, snap.Released)
	assert.Zero(t, snap.LiveBytes)
}
