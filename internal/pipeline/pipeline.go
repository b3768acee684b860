package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	fsutil "github.com/kk-code-lab/rpix/internal/fs"
	"github.com/kk-code-lab/rpix/internal/imaging"
	"github.com/sirupsen/logrus"
)

const defaultQueueSize = 64

var errNoImage = errors.New("decoder returned no image")

// Job asks the pipeline to read and decode one file.
type Job struct {
	Path         string
	Generation   int
	TargetWidth  int
	TargetHeight int
}

// Completion reports the outcome of one accepted Job. Exactly one of Image
// and Err is set.
type Completion struct {
	Path       string
	Generation int
	Image      *imaging.Image
	Err        error
	ReadTime   time.Duration
	DecodeTime time.Duration
}

// Options configures pool sizes and limits. Zero values pick defaults.
type Options struct {
	IOWorkers     int
	DecodeWorkers int
	MaxFileSize   int64
	QueueSize     int
	Logger        *logrus.Entry

	// ReadFile replaces the file reader; tests use it to inject failures.
	ReadFile func(path string, limit int64) ([]byte, error)
}

// Pipeline reads files on a small I/O pool and hands the bytes to a separate
// decode pool. Results are posted to Completions in completion order.
type Pipeline struct {
	decoder     imaging.Decoder
	readFile    func(string, int64) ([]byte, error)
	maxFileSize int64

	ioQueue     chan Job
	decodeQueue chan decodeTask
	completions chan Completion

	ctx    context.Context
	cancel context.CancelFunc
	log    *logrus.Entry

	ioWorkers     int
	decodeWorkers int
}

type decodeTask struct {
	job      Job
	data     []byte
	readTime time.Duration
}

// New starts the worker pools. Call Close to stop them.
func New(decoder imaging.Decoder, opts Options) *Pipeline {
	if opts.IOWorkers <= 0 {
		opts.IOWorkers = DefaultIOWorkers()
	}
	if opts.DecodeWorkers <= 0 {
		opts.DecodeWorkers = DefaultDecodeWorkers()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.ReadFile == nil {
		opts.ReadFile = fsutil.ReadFileLimited
	}
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(logrus.StandardLogger())
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		decoder:       decoder,
		readFile:      opts.ReadFile,
		maxFileSize:   opts.MaxFileSize,
		ioQueue:       make(chan Job, opts.QueueSize),
		decodeQueue:   make(chan decodeTask, opts.DecodeWorkers),
		completions:   make(chan Completion, opts.QueueSize),
		ctx:           ctx,
		cancel:        cancel,
		log:           opts.Logger.WithField("component", "pipeline"),
		ioWorkers:     opts.IOWorkers,
		decodeWorkers: opts.DecodeWorkers,
	}

	for i := 0; i < p.ioWorkers; i++ {
		go p.runIOWorker(i)
	}
	for i := 0; i < p.decodeWorkers; i++ {
		go p.runDecodeWorker(i)
	}

	p.log.WithFields(logrus.Fields{
		"io_workers":     p.ioWorkers,
		"decode_workers": p.decodeWorkers,
	}).Debug("pipeline started")
	return p
}

// Submit queues job without blocking. It reports false once the pipeline is closed.
func (p *Pipeline) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.ioQueue <- job:
	default:
		go func() {
			select {
			case p.ioQueue <- job:
			case <-p.ctx.Done():
			}
		}()
	}
	return true
}

// Completions delivers one Completion per accepted job.
func (p *Pipeline) Completions() <-chan Completion {
	return p.completions
}

// Workers reports the I/O and decode pool sizes.
func (p *Pipeline) Workers() (io, decode int) {
	return p.ioWorkers, p.decodeWorkers
}

// Close stops the pools without waiting for in-flight work. Results produced
// after Close are dropped.
func (p *Pipeline) Close() {
	p.cancel()
}

func (p *Pipeline) runIOWorker(id int) {
	log := p.log.WithField("io_worker", id)
	for {
		select {
		case <-p.ctx.Done():
			return
		case job := <-p.ioQueue:
			start := time.Now()
			data, err := p.readFile(job.Path, p.maxFileSize)
			readTime := time.Since(start)
			if err != nil {
				log.WithError(err).WithField("path", job.Path).Debug("read failed")
				p.complete(Completion{
					Path:       job.Path,
					Generation: job.Generation,
					Err:        err,
					ReadTime:   readTime,
				})
				continue
			}

			select {
			case p.decodeQueue <- decodeTask{job: job, data: data, readTime: readTime}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

func (p *Pipeline) runDecodeWorker(id int) {
	log := p.log.WithField("decode_worker", id)
	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.decodeQueue:
			start := time.Now()
			img, err := p.decode(task)
			decodeTime := time.Since(start)
			if err != nil {
				log.WithError(err).WithField("path", task.job.Path).Debug("decode failed")
				img = nil
			}
			p.complete(Completion{
				Path:       task.job.Path,
				Generation: task.job.Generation,
				Image:      img,
				Err:        err,
				ReadTime:   task.readTime,
				DecodeTime: decodeTime,
			})
		}
	}
}

func (p *Pipeline) decode(task decodeTask) (img *imaging.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = fmt.Errorf("decode %s panicked: %v", task.job.Path, r)
		}
	}()

	img, err = p.decoder.Decode(p.ctx, imaging.Request{
		Path:         task.job.Path,
		Data:         task.data,
		TargetWidth:  task.job.TargetWidth,
		TargetHeight: task.job.TargetHeight,
	})
	if err != nil {
		return nil, err
	}
	if img == nil || !img.Valid() {
		return nil, fmt.Errorf("%s: %w", task.job.Path, errNoImage)
	}
	return img, nil
}

func (p *Pipeline) complete(c Completion) {
	select {
	case p.completions <- c:
	case <-p.ctx.Done():
	}
}
