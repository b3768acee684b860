// Package decodeproc runs image decoding in child processes so that a decoder
// crash or hang cannot take the viewer down with it.
//
// Messages are msgpack bodies behind a 4-byte big-endian length prefix.
package decodeproc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/kk-code-lab/rpix/internal/imaging"
	"github.com/vmihailenco/msgpack/v5"
)

// maxFrameSize bounds a single message. Decoded frames are capped by the
// decode target, so anything larger means the stream is out of sync.
const maxFrameSize = 512 << 20

const (
	errKindNone        = ""
	errKindUnsupported = "unsupported"
	errKindDecode      = "decode"
	errKindCanceled    = "canceled"
)

var errFrameTooLarge = errors.New("decodeproc: frame exceeds size limit")

type request struct {
	ID           string `msgpack:"id"`
	Path         string `msgpack:"path"`
	Data         []byte `msgpack:"data"`
	TargetWidth  int    `msgpack:"target_width"`
	TargetHeight int    `msgpack:"target_height"`
}

type response struct {
	ID      string `msgpack:"id"`
	Width   int    `msgpack:"width"`
	Height  int    `msgpack:"height"`
	Pix     []byte `msgpack:"pix"`
	ErrKind string `msgpack:"err_kind"`
	Err     string `msgpack:"err"`
}

func writeFrame(w io.Writer, v any) error {
	body, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	if len(body) > maxFrameSize {
		return errFrameTooLarge
	}

	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(body)))
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("write length prefix: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write frame body: %w", err)
	}
	return nil
}

// readFrame returns io.EOF untouched when the stream ends on a frame boundary.
func readFrame(r io.Reader, v any) error {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(prefix[:])
	if n > maxFrameSize {
		return errFrameTooLarge
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("read frame body: %w", err)
	}
	if err := msgpack.Unmarshal(body, v); err != nil {
		return fmt.Errorf("unmarshal frame: %w", err)
	}
	return nil
}

func errorKind(err error) string {
	switch {
	case err == nil:
		return errKindNone
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return errKindUnsupported
	case errors.Is(err, errCanceled):
		return errKindCanceled
	default:
		return errKindDecode
	}
}

// result turns a response back into the decoder's return values.
func (r response) result() (*imaging.Image, error) {
	switch r.ErrKind {
	case errKindNone:
		img := &imaging.Image{Width: r.Width, Height: r.Height, Pix: r.Pix}
		if !img.Valid() {
			return nil, fmt.Errorf("decodeproc: worker sent %dx%d image with %d bytes", r.Width, r.Height, len(r.Pix))
		}
		return img, nil
	case errKindUnsupported:
		return nil, fmt.Errorf("%w: %s", imaging.ErrUnsupportedFormat, r.Err)
	case errKindCanceled:
		return nil, fmt.Errorf("%w: %s", errCanceled, r.Err)
	default:
		return nil, errors.New(r.Err)
	}
}
