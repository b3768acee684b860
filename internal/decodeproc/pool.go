package decodeproc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kk-code-lab/rpix/internal/imaging"
	"github.com/sirupsen/logrus"
)

const (
	defaultTimeout = 10 * time.Second
	// WorkerCommand is the hidden subcommand that runs Serve on stdio.
	WorkerCommand = "decode-worker"
)

var errPoolClosed = errors.New("decodeproc: pool closed")

// Options configures a Pool. Zero values pick defaults.
type Options struct {
	Size    int
	Timeout time.Duration
	Logger  *logrus.Entry

	// Command builds the child process. By default the running executable is
	// re-invoked with WorkerCommand.
	Command func() (*exec.Cmd, error)
}

// Pool decodes images in child processes. It implements imaging.Decoder and
// can be shared by every decode worker of a pipeline: each child serves one
// request at a time and callers wait for a free slot.
type Pool struct {
	timeout time.Duration
	command func() (*exec.Cmd, error)
	log     *logrus.Entry

	// slots holds one entry per allowed child; nil means not yet spawned.
	slots chan *child

	mu     sync.Mutex
	live   map[*child]struct{}
	closed chan struct{}
	once   sync.Once
}

type child struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	exited chan struct{}
}

type roundTripResult struct {
	resp response
	err  error
}

// NewPool prepares a pool. Children start on first use.
func NewPool(opts Options) *Pool {
	if opts.Size <= 0 {
		opts.Size = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Command == nil {
		opts.Command = selfCommand
	}
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(logrus.StandardLogger())
	}

	p := &Pool{
		timeout: opts.Timeout,
		command: opts.Command,
		log:     opts.Logger.WithField("component", "decodeproc"),
		slots:   make(chan *child, opts.Size),
		live:    make(map[*child]struct{}),
		closed:  make(chan struct{}),
	}
	for i := 0; i < opts.Size; i++ {
		p.slots <- nil
	}
	return p
}

func selfCommand() (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	return exec.Command(exe, WorkerCommand), nil
}

// Decode sends req to a child process. Failures of the child itself are
// reported as imaging.ErrBackendUnavailable; the child is discarded and a
// fresh one is spawned on the next call.
func (p *Pool) Decode(ctx context.Context, req imaging.Request) (*imaging.Image, error) {
	if p.isClosed() {
		return nil, errPoolClosed
	}

	var c *child
	select {
	case c = <-p.slots:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.closed:
		return nil, errPoolClosed
	}

	if c == nil || c.dead() {
		spawned, err := p.spawn()
		if err != nil {
			p.slots <- nil
			if errors.Is(err, errPoolClosed) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", imaging.ErrBackendUnavailable, err)
		}
		c = spawned
	}

	resp, err := p.roundTrip(ctx, c, request{
		ID:           uuid.NewString(),
		Path:         req.Path,
		Data:         req.Data,
		TargetWidth:  req.TargetWidth,
		TargetHeight: req.TargetHeight,
	})
	if err != nil {
		p.discard(c)
		p.slots <- nil
		return nil, err
	}
	p.slots <- c
	return resp.result()
}

func (p *Pool) roundTrip(ctx context.Context, c *child, req request) (response, error) {
	done := make(chan roundTripResult, 1)
	go func() {
		if err := writeFrame(c.stdin, req); err != nil {
			done <- roundTripResult{err: err}
			return
		}
		var resp response
		err := readFrame(c.stdout, &resp)
		done <- roundTripResult{resp: resp, err: err}
	}()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	log := p.log.WithFields(logrus.Fields{"path": req.Path, "pid": c.cmd.Process.Pid})
	select {
	case res := <-done:
		if res.err != nil {
			log.WithError(res.err).Warn("decode worker failed")
			return response{}, fmt.Errorf("%w: %v", imaging.ErrBackendUnavailable, res.err)
		}
		if res.resp.ID != req.ID {
			log.WithField("id", res.resp.ID).Warn("decode worker answered a different request")
			return response{}, fmt.Errorf("%w: response id mismatch", imaging.ErrBackendUnavailable)
		}
		return res.resp, nil
	case <-timer.C:
		log.WithField("timeout", p.timeout).Warn("decode worker timed out")
		return response{}, fmt.Errorf("%w: timed out after %s", imaging.ErrBackendUnavailable, p.timeout)
	case <-c.exited:
		log.Warn("decode worker exited")
		return response{}, fmt.Errorf("%w: worker exited", imaging.ErrBackendUnavailable)
	case <-ctx.Done():
		return response{}, ctx.Err()
	case <-p.closed:
		return response{}, errPoolClosed
	}
}

func (p *Pool) spawn() (*child, error) {
	if p.isClosed() {
		return nil, errPoolClosed
	}

	cmd, err := p.command()
	if err != nil {
		return nil, err
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start decode worker: %w", err)
	}

	c := &child{cmd: cmd, stdin: stdin, stdout: stdout, exited: make(chan struct{})}
	log := p.log.WithField("pid", cmd.Process.Pid)
	log.Debug("decode worker spawned")

	p.mu.Lock()
	p.live[c] = struct{}{}
	p.mu.Unlock()

	go forwardStderr(log, stderr)
	go func() {
		err := cmd.Wait()
		close(c.exited)
		if err != nil {
			log.WithError(err).Debug("decode worker exited")
		}
	}()
	return c, nil
}

func (p *Pool) discard(c *child) {
	p.mu.Lock()
	delete(p.live, c)
	p.mu.Unlock()
	c.kill()
}

// Close kills every child without waiting for it to exit. Pending and later
// Decode calls fail.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.closed)
		p.mu.Lock()
		live := p.live
		p.live = make(map[*child]struct{})
		p.mu.Unlock()
		for c := range live {
			c.kill()
		}
	})
}

func (p *Pool) isClosed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

func (c *child) dead() bool {
	select {
	case <-c.exited:
		return true
	default:
		return false
	}
}

func (c *child) kill() {
	_ = c.stdin.Close()
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
}

func forwardStderr(log *logrus.Entry, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case containsAny(line, "level=error", "level=fatal", "panic:"):
			log.WithField("log", line).Error("decode worker error")
		case containsAny(line, "level=warning"):
			log.WithField("log", line).Warn("decode worker warning")
		default:
			log.WithField("log", line).Debug("decode worker log")
		}
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
