package chunker

import (
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(500))
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
	})

	t.Run("custom overlap", func(t *testing.T) {
		p := New(WithOverlap(50))
		if p.overlap != 50 {
			t.Errorf("expected overlap 50, got %d", p.overlap)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap >= p.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1))
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
	})
}

func TestProcessor_Split_Empty(t *testing.T) {
	p := New()
	if windows := p.Split(""); len(windows) != 0 {
		t.Errorf("expected 0 windows for empty text, got %d", len(windows))
	}
	if windows := p.Split("   \n\t  "); len(windows) != 0 {
		t.Errorf("expected 0 windows for whitespace text, got %d", len(windows))
	}
}

func TestProcessor_Split_SmallContent(t *testing.T) {
	p := New()
	text := "This is a short lesson. It fits in one chunk."

	windows := p.Split(text)
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if windows[0] != text {
		t.Errorf("expected window to equal input, got %q", windows[0])
	}
}

func TestProcessor_Split_RespectsChunkSize(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(20))

	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "Sentence number %d has some words in it. ", i)
	}

	windows := p.Split(b.String())
	if len(windows) < 2 {
		t.Fatalf("expected multiple windows, got %d", len(windows))
	}
	for i, w := range windows {
		if len(w) > 100 {
			t.Errorf("window %d exceeds chunk size: %d chars", i, len(w))
		}
	}
}

func TestProcessor_Split_Overlap(t *testing.T) {
	p := New(WithChunkSize(80), WithOverlap(40))

	var b strings.Builder
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "Sentence %d is here. ", i)
	}

	windows := p.Split(b.String())
	if len(windows) < 2 {
		t.Fatalf("expected multiple windows, got %d", len(windows))
	}

	// Consecutive windows must share at least one sentence.
	for i := 1; i < len(windows); i++ {
		prevTail := lastSentence(windows[i-1])
		if !strings.Contains(windows[i], prevTail) {
			t.Errorf("window %d does not overlap with previous: %q not in %q",
				i, prevTail, windows[i])
		}
	}
}

func TestProcessor_Split_LongSentence(t *testing.T) {
	p := New(WithChunkSize(50), WithOverlap(10))
	long := strings.Repeat("word ", 30) + "end."

	windows := p.Split(long)
	if len(windows) != 1 {
		t.Fatalf("expected 1 window for a single long sentence, got %d", len(windows))
	}
}

func TestProcessor_Split_NormalisesWhitespace(t *testing.T) {
	p := New()
	windows := p.Split("First  sentence\nhere. Second\t sentence.")
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if windows[0] != "First sentence here. Second sentence." {
		t.Errorf("whitespace not normalised: %q", windows[0])
	}
}

func TestProcessor_ChunkLesson_Prefixes(t *testing.T) {
	p := New(WithChunkSize(60), WithOverlap(0))

	var b strings.Builder
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&b, "Sentence number %d goes here. ", i)
	}

	chunks := p.ChunkLesson("Introduction to MCP", 3, 0, b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	if !strings.HasPrefix(chunks[0].Content, "Lesson 3 content: ") {
		t.Errorf("first chunk prefix wrong: %q", chunks[0].Content)
	}
	for i := 1; i < len(chunks); i++ {
		want := "Course Introduction to MCP Lesson 3 content: "
		if !strings.HasPrefix(chunks[i].Content, want) {
			t.Errorf("chunk %d prefix wrong: %q", i, chunks[i].Content)
		}
	}
}

func TestProcessor_ChunkLesson_Metadata(t *testing.T) {
	p := New()
	chunks := p.ChunkLesson("Some Course", 1, 7, "Only one sentence here.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}

	c := chunks[0]
	if c.CourseTitle != "Some Course" {
		t.Errorf("expected course title 'Some Course', got %q", c.CourseTitle)
	}
	if c.LessonNumber == nil || *c.LessonNumber != 1 {
		t.Errorf("expected lesson number 1, got %v", c.LessonNumber)
	}
	if c.Index != 7 {
		t.Errorf("expected index 7, got %d", c.Index)
	}
}

func TestProcessor_ChunkLesson_Empty(t *testing.T) {
	p := New()
	if chunks := p.ChunkLesson("Course", 1, 0, ""); chunks != nil {
		t.Errorf("expected nil chunks for empty body, got %d", len(chunks))
	}
}

// lastSentence returns the final sentence of a window.
func lastSentence(window string) string {
	idx := strings.LastIndex(window[:len(window)-1], ". ")
	if idx < 0 {
		return window
	}
	return window[idx+2:]
}
