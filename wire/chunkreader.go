package wire

import "io"

// chunkReader is an io.Reader wrapper that minimizes syscalls and allocations
// by reading as much as fits in its internal buffer on every underlying
// Read, then serving subsequent Next calls out of that buffer. The slice
// returned by Next is only valid until the following call to Next.
//
// Ground truth: github.com/jackc/pgx/v5/pgproto3.chunkReader, generalized
// here to also back the u16 chunk-length reads the chunk framing layer in
// chunk.go needs (pgproto3's reader only ever reads a fixed 5-byte header).
type chunkReader struct {
	r io.Reader

	buf    []byte
	rp, wp int

	ownBuf []byte
}

func newChunkReader(r io.Reader, bufSize int) *chunkReader {
	if bufSize <= 0 {
		bufSize = 8192
	}
	buf := make([]byte, bufSize)
	return &chunkReader{r: r, buf: buf, ownBuf: buf}
}

// Next returns the next n bytes read from the underlying reader. The
// returned slice aliases the internal buffer and is invalidated by the next
// call to Next.
func (r *chunkReader) Next(n int) ([]byte, error) {
	if r.rp == r.wp {
		if len(r.buf) != len(r.ownBuf) {
			r.buf = r.ownBuf
		}
		r.rp, r.wp = 0, 0
	}

	if (r.wp - r.rp) >= n {
		buf := r.buf[r.rp : r.rp+n : r.rp+n]
		r.rp += n
		return buf, nil
	}

	if len(r.buf) < n {
		bigBuf := make([]byte, n)
		r.wp = copy(bigBuf, r.buf[r.rp:r.wp])
		r.rp = 0
		r.buf = bigBuf
	}

	minRead := n - (r.wp - r.rp)
	if (len(r.buf) - r.wp) < minRead {
		r.wp = copy(r.buf, r.buf[r.rp:r.wp])
		r.rp = 0
	}

	read, err := io.ReadAtLeast(r.r, r.buf[r.wp:], minRead)
	r.wp += read
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	buf := r.buf[r.rp : r.rp+n : r.rp+n]
	r.rp += n
	return buf, nil
}
