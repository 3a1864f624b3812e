// Package stream decodes the generation API's streaming protocol: UTF-8 text
// split on '|', where each segment prefixed with NEW_SLIDE: carries a
// JSON-encoded slide.
package stream

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/ChaseRain/lessonslides/pkg/errors"
)

const (
	Separator   = '|'
	SlidePrefix = "NEW_SLIDE:"

	readSize = 4096
)

type ChunkType string

const (
	ChunkSlide    ChunkType = "slide"
	ChunkQuestion ChunkType = "question"
)

// Chunk is one decoded unit. Exactly one of Slide or Question is set,
// matching Type.
type Chunk struct {
	Type     ChunkType
	Slide    *slides.Slide
	Question *slides.Question
}

type Options struct {
	// QuestionPrefix enables question chunks for segments starting with it.
	// Empty disables them; the production API has no such prefix today.
	QuestionPrefix string
}

// Decoder pulls chunks from a byte stream. It is not safe for concurrent use
// and cannot be restarted.
type Decoder struct {
	r       io.ReadCloser
	opts    Options
	buf     []byte
	pending []Chunk
	// err is raised once the chunks decoded before it have been returned
	err     error
	readBuf []byte
	done    bool
	closed  bool
}

func NewDecoder(r io.ReadCloser, opts Options) *Decoder {
	return &Decoder{
		r:       r,
		opts:    opts,
		readBuf: make([]byte, readSize),
	}
}

// Next returns the next chunk, reading from the underlying stream only when
// no complete segment is buffered. It returns io.EOF once the stream ends;
// an incomplete trailing segment is discarded at that point.
func (d *Decoder) Next() (Chunk, error) {
	for {
		if len(d.pending) > 0 {
			c := d.pending[0]
			d.pending = d.pending[1:]
			return c, nil
		}
		if d.err != nil {
			return Chunk{}, d.err
		}
		if d.done {
			return Chunk{}, io.EOF
		}

		n, err := d.r.Read(d.readBuf)
		if n > 0 {
			d.buf = append(d.buf, d.readBuf[:n]...)
			if perr := d.drainSegments(); perr != nil {
				d.Close()
				d.err = perr
				continue
			}
		}
		if err == io.EOF {
			d.done = true
			d.buf = nil
			d.Close()
			continue
		}
		if err != nil {
			d.Close()
			return Chunk{}, errors.Wrap(err, errors.ErrCodeUpstreamAPI, "streaming read failed")
		}
	}
}

// Close releases the underlying stream. Safe to call more than once.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.r.Close()
}

// drainSegments parses every complete segment in buf and keeps the tail.
func (d *Decoder) drainSegments() error {
	for {
		i := bytes.IndexByte(d.buf, Separator)
		if i < 0 {
			return nil
		}
		segment := string(d.buf[:i])
		d.buf = d.buf[i+1:]

		chunk, ok, err := d.parseSegment(segment)
		if err != nil {
			return err
		}
		if ok {
			d.pending = append(d.pending, chunk)
		}
	}
}

func (d *Decoder) parseSegment(segment string) (Chunk, bool, error) {
	segment = strings.TrimSpace(segment)

	if strings.HasPrefix(segment, SlidePrefix) {
		var s slides.Slide
		if err := json.Unmarshal([]byte(segment[len(SlidePrefix):]), &s); err != nil {
			return Chunk{}, false, errors.Wrap(err, errors.ErrCodeStreamDecode, "malformed slide segment")
		}
		return Chunk{Type: ChunkSlide, Slide: &s}, true, nil
	}

	if p := d.opts.QuestionPrefix; p != "" && strings.HasPrefix(segment, p) {
		var q slides.Question
		if err := json.Unmarshal([]byte(segment[len(p):]), &q); err != nil {
			return Chunk{}, false, errors.Wrap(err, errors.ErrCodeStreamDecode, "malformed question segment")
		}
		return Chunk{Type: ChunkQuestion, Question: &q}, true, nil
	}

	return Chunk{}, false, nil
}
