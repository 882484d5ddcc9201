// Package console drives string queues from a line-oriented command script.
// Every command that changes the queue is followed by an invariant check, and
// freeing the queue verifies that all of its storage came back.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	stringqueue "github.com/timzifer/string_queue"
	"github.com/timzifer/string_queue/internal/alloc"
	"github.com/timzifer/string_queue/internal/config"
	"github.com/timzifer/string_queue/internal/log"
	"github.com/timzifer/string_queue/internal/telemetry"
)

var errQuit = errors.New("quit")

type command struct {
	usage  string
	help   string
	mutate bool
	run    func(in *Interpreter, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"new":     {usage: "new", help: "Create a new queue", mutate: true, run: (*Interpreter).doNew},
		"free":    {usage: "free", help: "Delete the queue", run: (*Interpreter).doFree},
		"ih":      {usage: "ih str [n]", help: "Insert str at head n times", mutate: true, run: (*Interpreter).doInsertHead},
		"it":      {usage: "it str [n]", help: "Insert str at tail n times", mutate: true, run: (*Interpreter).doInsertTail},
		"rh":      {usage: "rh [str]", help: "Remove from head, optionally comparing with str", mutate: true, run: (*Interpreter).doRemove},
		"rhq":     {usage: "rhq", help: "Remove from head without reporting the value", mutate: true, run: (*Interpreter).doRemoveQuiet},
		"size":    {usage: "size [n]", help: "Report the queue size, optionally comparing with n", run: (*Interpreter).doSize},
		"reverse": {usage: "reverse", help: "Reverse the queue in place", mutate: true, run: (*Interpreter).doReverse},
		"sort":    {usage: "sort", help: "Sort the queue ascending", mutate: true, run: (*Interpreter).doSort},
		"show":    {usage: "show", help: "Print the queue", run: (*Interpreter).doShow},
		"stats":   {usage: "stats", help: "Print allocation counters", run: (*Interpreter).doStats},
		"option":  {usage: "option [name value]", help: "Show or set fail, length, verbose or echo", run: (*Interpreter).doOption},
		"help":    {usage: "help", help: "List commands", run: (*Interpreter).doHelp},
		"quit":    {usage: "quit", help: "Stop reading commands", run: func(*Interpreter, []string) error { return errQuit }},
	}
}

// Interpreter executes queue commands against a single queue.
type Interpreter struct {
	ctx     context.Context
	out     io.Writer
	tracker *alloc.Tracker
	metrics *telemetry.AllocMetrics
	queue   *stringqueue.Queue
	length  int
	verbose bool
	echo    bool
	errors  int
	done    bool
}

// New returns an Interpreter writing command output to out. Each interpreter
// counts its own allocation traffic.
func New(ctx context.Context, out io.Writer, cfg config.Config) *Interpreter {
	metrics := &telemetry.AllocMetrics{}
	return &Interpreter{
		ctx: ctx,
		out: out,
		tracker: alloc.NewTracker(
			alloc.WithFailPercent(cfg.FailPercent),
			alloc.WithSeed(cfg.Seed),
			alloc.WithMetrics(metrics),
		),
		metrics: metrics,
		length:  cfg.StringLength,
		verbose: cfg.Verbose,
		echo:    cfg.Echo,
	}
}

// Stats returns the allocation counters collected so far.
func (in *Interpreter) Stats() telemetry.AllocSnapshot {
	return in.metrics.Snapshot()
}

// Errors returns the number of commands that failed so far.
func (in *Interpreter) Errors() int {
	return in.errors
}

// Queue exposes the current queue, nil if none exists.
func (in *Interpreter) Queue() *stringqueue.Queue {
	return in.queue
}

// Run executes every line of r until EOF or quit.
func (in *Interpreter) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for !in.done && scanner.Scan() {
		in.Exec(scanner.Text())
	}
	return errors.Wrap(scanner.Err(), "read commands")
}

// Exec runs one command line and reports whether it succeeded.
func (in *Interpreter) Exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return true
	}
	if in.echo {
		in.printf("cmd> %s\n", line)
	}

	args := strings.Fields(line)
	cmd, ok := commands[args[0]]
	if !ok {
		return in.fail(errors.Errorf("unknown command %q", args[0]))
	}

	log.Debug(in.ctx, "exec", "cmd", args[0], "args", len(args)-1)
	err := cmd.run(in, args[1:])
	if errors.Is(err, errQuit) {
		in.done = true
		return true
	}
	if err != nil {
		return in.fail(errors.Wrap(err, args[0]))
	}

	if cmd.mutate && in.queue != nil {
		if err := in.queue.Check(); err != nil {
			return in.fail(errors.Wrapf(err, "%s broke the queue", args[0]))
		}
	}
	if in.verbose && cmd.mutate {
		in.show()
	}
	return true
}

// Close frees the queue, if any, and verifies that no storage is left.
func (in *Interpreter) Close() error {
	if in.queue != nil {
		in.queue.Free()
		in.queue = nil
	}

	snap := in.metrics.Snapshot()
	log.Info(in.ctx, "allocation summary",
		"reserved", snap.Reserved, "released", snap.Released,
		"failures", snap.Failures, "live_bytes", snap.LiveBytes)
	return in.tracker.Verify()
}

func (in *Interpreter) fail(err error) bool {
	in.errors++
	in.printf("ERROR: %v\n", err)
	log.Error(in.ctx, "command failed", "err", err)
	return false
}

func (in *Interpreter) printf(format string, a ...interface{}) {
	fmt.Fprintf(in.out, format, a...)
}

// allocationMayFail reports whether a refused reservation is expected.
func (in *Interpreter) allocationMayFail() bool {
	return in.tracker.FailPercent() > 0
}

func (in *Interpreter) requireQueue() error {
	if in.queue == nil {
		return errors.New("no queue, run new first")
	}
	return nil
}

func (in *Interpreter) doNew(args []string) error {
	if in.queue != nil {
		if err := in.freeQueue(); err != nil {
			return err
		}
	}
	in.queue = stringqueue.New(stringqueue.WithAllocator(in.tracker))
	if in.queue == nil {
		if in.allocationMayFail() {
			in.printf("queue allocation refused\n")
			return nil
		}
		return errors.New("queue allocation failed")
	}
	return nil
}

func (in *Interpreter) doFree(args []string) error {
	return in.freeQueue()
}

func (in *Interpreter) freeQueue() error {
	in.queue.Free()
	in.queue = nil
	return errors.Wrap(in.tracker.Verify(), "after free")
}

func (in *Interpreter) doInsertHead(args []string) error {
	return in.insert(args, (*stringqueue.Queue).InsertHead)
}

func (in *Interpreter) doInsertTail(args []string) error {
	return in.insert(args, (*stringqueue.Queue).InsertTail)
}

func (in *Interpreter) insert(args []string, insert func(*stringqueue.Queue, string) bool) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("need a string and an optional count")
	}
	count := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return errors.Errorf("invalid count %q", args[1])
		}
		count = n
	}
	if err := in.requireQueue(); err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		before := in.queue.Size()
		if insert(in.queue, args[0]) {
			continue
		}
		if in.queue.Size() != before {
			return errors.Errorf("failed insertion changed size from %d to %d", before, in.queue.Size())
		}
		if !in.allocationMayFail() {
			return errors.Errorf("insertion of %q failed", args[0])
		}
		in.printf("insertion of %q refused\n", args[0])
	}
	return nil
}

func (in *Interpreter) doRemove(args []string) error {
	if len(args) > 1 {
		return errors.New("at most one expected value")
	}
	value, err := in.remove()
	if err != nil {
		return err
	}
	in.printf("Removed %s from queue\n", value)

	if len(args) == 1 {
		want := args[0]
		if limit := max(in.length-1, 0); len(want) > limit {
			want = want[:limit]
		}
		if value != want {
			return errors.Errorf("removed value %q, expected %q", value, want)
		}
	}
	return nil
}

func (in *Interpreter) doRemoveQuiet(args []string) error {
	_, err := in.remove()
	return err
}

func (in *Interpreter) remove() (string, error) {
	if err := in.requireQueue(); err != nil {
		return "", err
	}
	before := in.queue.Size()
	buf := make([]byte, in.length)
	if !in.queue.RemoveHead(buf) {
		return "", errors.New("queue is empty")
	}
	if in.queue.Size() != before-1 {
		return "", errors.Errorf("size went from %d to %d on removal", before, in.queue.Size())
	}
	return terminated(buf), nil
}

func (in *Interpreter) doSize(args []string) error {
	size := in.queue.Size()
	in.printf("Queue size = %d\n", size)
	if len(args) == 1 {
		want, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.Errorf("invalid size %q", args[0])
		}
		if size != want {
			return errors.Errorf("size is %d, expected %d", size, want)
		}
	}
	return nil
}

func (in *Interpreter) doReverse(args []string) error {
	if err := in.requireQueue(); err != nil {
		return err
	}
	in.queue.Reverse()
	return nil
}

func (in *Interpreter) doSort(args []string) error {
	if err := in.requireQueue(); err != nil {
		return err
	}
	in.queue.Sort()
	if values := in.queue.Values(); !sort.StringsAreSorted(values) {
		return errors.Errorf("queue not ascending after sort: %v", values)
	}
	return nil
}

func (in *Interpreter) doShow(args []string) error {
	in.show()
	return nil
}

func (in *Interpreter) show() {
	if in.queue == nil {
		in.printf("q = NULL\n")
		return
	}
	in.printf("q = [%s]\n", strings.Join(in.queue.Values(), " "))
}

func (in *Interpreter) doStats(args []string) error {
	snap := in.metrics.Snapshot()
	in.printf("reserved %d released %d failures %d live %d live_bytes %d\n",
		snap.Reserved, snap.Released, snap.Failures, snap.Live(), snap.LiveBytes)
	return nil
}

func (in *Interpreter) doOption(args []string) error {
	if len(args) == 0 {
		in.printf("fail\t%d\nlength\t%d\nverbose\t%t\necho\t%t\n", in.tracker.FailPercent(), in.length, in.verbose, in.echo)
		return nil
	}
	if len(args) != 2 {
		return errors.New("need a name and a value")
	}

	name, value := args[0], args[1]
	switch name {
	case "fail":
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "fail %q", value)
		}
		return in.tracker.SetFailPercent(n)
	case "length":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return errors.Errorf("invalid length %q", value)
		}
		in.length = n
	case "verbose", "echo":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, "%s %q", name, value)
		}
		if name == "verbose" {
			in.verbose = b
		} else {
			in.echo = b
		}
	default:
		return errors.Errorf("unknown option %q", name)
	}
	return nil
}

func (in *Interpreter) doHelp(args []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		in.printf("%-20s| %s\n", commands[name].usage, commands[name].help)
	}
	return nil
}

func terminated(buf []byte) string {
	if i := strings.IndexByte(string(buf), 0); i >= 0 {
		return string(buf[:i])
	}
	return string(buf)
}
