package packet

import "io"

// FrameReader is a read cursor over a single packet's raw bytes. Reads past
// the written length fail with io.ErrUnexpectedEOF and leave the cursor where
// it was.
type FrameReader struct {
	buf []byte
	off int
}

func NewFrameReader(buf []byte) FrameReader {
	return FrameReader{
		buf: buf,
		off: 0,
	}
}

func (r FrameReader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *FrameReader) ReadByte() (byte, error) {
	if r.off >= len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *FrameReader) Read(n int) ([]byte, error) {
	if r.off+n > len(r.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Stream adapts the cursor to io.Reader for decoders that stream their input,
// like the NBT codec.
func (r *FrameReader) Stream() io.Reader {
	return frameStream{r}
}

type frameStream struct {
	fr *FrameReader
}

func (s frameStream) Read(p []byte) (int, error) {
	if s.fr.Remaining() == 0 {
		return 0, io.EOF
	}
	n := len(p)
	if n > s.fr.Remaining() {
		n = s.fr.Remaining()
	}
	b, err := s.fr.Read(n)
	if err != nil {
		return 0, err
	}
	copy(p, b)
	return n, nil
}
