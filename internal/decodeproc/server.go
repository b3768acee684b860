package decodeproc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kk-code-lab/rpix/internal/imaging"
)

var errCanceled = errors.New("decode canceled")

// Serve answers decode requests read from r until r reaches EOF or ctx is
// cancelled. Requests are handled one at a time, in order.
func Serve(ctx context.Context, r io.Reader, w io.Writer, decoder imaging.Decoder) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		var req request
		if err := readFrame(r, &req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode worker: %w", err)
		}

		resp := handle(ctx, decoder, req)
		if err := writeFrame(w, resp); err != nil {
			return fmt.Errorf("decode worker: %w", err)
		}
	}
}

func handle(ctx context.Context, decoder imaging.Decoder, req request) (resp response) {
	resp.ID = req.ID
	defer func() {
		if r := recover(); r != nil {
			resp = response{ID: req.ID, ErrKind: errKindDecode, Err: fmt.Sprintf("decode %s panicked: %v", req.Path, r)}
		}
	}()

	img, err := decoder.Decode(ctx, imaging.Request{
		Path:         req.Path,
		Data:         req.Data,
		TargetWidth:  req.TargetWidth,
		TargetHeight: req.TargetHeight,
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", errCanceled, err)
	}
	if err == nil && (img == nil || !img.Valid()) {
		err = fmt.Errorf("decode %s: no image produced", req.Path)
	}
	if err != nil {
		resp.ErrKind = errorKind(err)
		resp.Err = err.Error()
		return resp
	}

	resp.Width = img.Width
	resp.Height = img.Height
	resp.Pix = img.Pix
	return resp
}
