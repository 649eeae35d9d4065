// Package chunker splits lesson text into overlapping, sentence-aligned
// windows and prefixes each window with retrieval context.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

// DefaultChunkSize is the default maximum characters per chunk.
const DefaultChunkSize = 800

// DefaultChunkOverlap is the default number of overlapping characters
// between consecutive chunks.
const DefaultChunkOverlap = 100

var whitespace = regexp.MustCompile(`\s+`)

// Processor packs sentences into fixed-size overlapping windows.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkLesson splits a lesson body into contextualized chunks.
//
// The first chunk of a lesson is prefixed with "Lesson {N} content: ", every
// following chunk with "Course {title} Lesson {N} content: ". A chunk
// retrieved in isolation must carry enough context to be attributable
// without a join back to its parent lesson.
//
// startIndex is the course-wide sequence index of the lesson's first chunk;
// chunk indexes are unique per (course, lesson, index) tuple.
func (p *Processor) ChunkLesson(courseTitle string, lessonNumber, startIndex int, body string) []domain.Chunk {
	windows := p.Split(body)
	if len(windows) == 0 {
		return nil
	}

	n := lessonNumber
	chunks := make([]domain.Chunk, 0, len(windows))
	for i, text := range windows {
		prefix := fmt.Sprintf("Lesson %d content: ", lessonNumber)
		if i > 0 {
			prefix = fmt.Sprintf("Course %s Lesson %d content: ", courseTitle, lessonNumber)
		}
		chunks = append(chunks, domain.Chunk{
			Content:      prefix + text,
			CourseTitle:  courseTitle,
			LessonNumber: &n,
			Index:        startIndex + i,
		})
	}
	return chunks
}

// Split packs the text's sentences into windows of at most chunkSize
// characters. When a window fills, the next window backs up by up to
// overlap characters of whole sentences from the previous window's tail,
// so consecutive windows share context. A single sentence longer than
// chunkSize becomes its own window rather than being cut mid-sentence.
func (p *Processor) Split(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var windows []string
	i := 0
	for i < len(sentences) {
		j := i
		size := 0
		for j < len(sentences) {
			add := len(sentences[j])
			if size > 0 {
				add++ // joining space
			}
			if size > 0 && size+add > p.chunkSize {
				break
			}
			size += add
			j++
		}

		windows = append(windows, strings.Join(sentences[i:j], " "))
		if j >= len(sentences) {
			break
		}

		// Back up whole sentences from the tail until the overlap budget
		// is spent. The next window always starts at least one sentence
		// past the previous start so the loop makes progress.
		k := j
		back := 0
		for k > i+1 {
			step := len(sentences[k-1]) + 1
			if back+step > p.overlap {
				break
			}
			back += step
			k--
		}
		i = k
	}

	return windows
}

// splitSentences normalises whitespace and splits on sentence boundaries.
// A boundary is a '.', '!' or '?' followed by whitespace. Text without any
// boundary yields a single sentence.
func splitSentences(text string) []string {
	text = whitespace.ReplaceAllString(strings.TrimSpace(text), " ")
	if text == "" {
		return nil
	}

	var sentences []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && text[i+1] == ' ' {
			s := strings.TrimSpace(text[start : i+1])
			if s != "" {
				sentences = append(sentences, s)
			}
			start = i + 2
		}
	}
	if start < len(text) {
		s := strings.TrimSpace(text[start:])
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
