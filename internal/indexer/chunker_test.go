package indexer

import (
	"strings"
	"testing"

	"github.com/smarimus/ai-finance-assistant/internal/models"
)

func TestNewChunker_Validation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"valid", 500, 50, false},
		{"zero overlap", 100, 0, false},
		{"zero size", 0, 0, true},
		{"negative overlap", 100, -1, true},
		{"overlap equals size", 100, 100, true},
		{"overlap exceeds size", 100, 150, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(tt.size, tt.overlap)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewChunker(%d, %d) error = %v, wantErr %v", tt.size, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestChunker_ShortText(t *testing.T) {
	c, _ := NewChunker(500, 50)
	article := &models.Article{ID: "a1", Title: "Short", Text: "brief text", Category: models.CategoryGeneral}
	chunks := c.Chunk(article)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != "brief text" {
		t.Errorf("chunk text = %q", chunks[0].Text)
	}
	if chunks[0].Index != 0 || chunks[0].ArticleID != "a1" {
		t.Errorf("chunk metadata = %+v", chunks[0])
	}
	if chunks[0].Category != models.CategoryGeneral || chunks[0].Title != "Short" {
		t.Error("chunk did not inherit article category and title")
	}
}

func TestChunker_EmptyText(t *testing.T) {
	c, _ := NewChunker(500, 50)
	for _, text := range []string{"", "   ", "\n\t  \n"} {
		article := &models.Article{ID: "a1", Text: text}
		if chunks := c.Chunk(article); chunks != nil {
			t.Errorf("text %q: got %d chunks, want nil", text, len(chunks))
		}
	}
}

func TestChunker_Overlap(t *testing.T) {
	c, _ := NewChunker(10, 3)
	text := "abcdefghijklmnopqrstuvwxyz"
	article := &models.Article{ID: "a1", Text: text}
	chunks := c.Chunk(article)

	// 26 runes, window 10, step 7: chunks at 0, 7, 14, 21.
	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4", len(chunks))
	}
	if chunks[0].Text != "abcdefghij" {
		t.Errorf("chunk 0 = %q", chunks[0].Text)
	}
	if chunks[1].Text != "hijklmnopq" {
		t.Errorf("chunk 1 = %q", chunks[1].Text)
	}
	if chunks[3].Text != "vwxyz" {
		t.Errorf("last chunk = %q", chunks[3].Text)
	}
	// Adjacent chunks share the overlap region.
	for i := 0; i < len(chunks)-1; i++ {
		tail := chunks[i].Text[len(chunks[i].Text)-3:]
		if !strings.HasPrefix(chunks[i+1].Text, tail) {
			t.Errorf("chunk %d does not start with the overlap of chunk %d", i+1, i)
		}
	}
	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("chunk %d has index %d", i, ch.Index)
		}
	}
}

func TestChunker_ExactBoundary(t *testing.T) {
	c, _ := NewChunker(10, 0)
	article := &models.Article{ID: "a1", Text: strings.Repeat("x", 20)}
	chunks := c.Chunk(article)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	for _, ch := range chunks {
		if len(ch.Text) != 10 {
			t.Errorf("chunk length = %d, want 10", len(ch.Text))
		}
	}
}

func TestChunker_MultibyteRunes(t *testing.T) {
	c, _ := NewChunker(5, 1)
	article := &models.Article{ID: "a1", Text: "金融リテラシーは大切です"}
	chunks := c.Chunk(article)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}
	for i, ch := range chunks {
		if n := len([]rune(ch.Text)); n > 5 {
			t.Errorf("chunk %d has %d runes, want <= 5", i, n)
		}
	}
	full := []rune(article.Text)
	if got := []rune(chunks[0].Text); string(got) != string(full[:5]) {
		t.Errorf("chunk 0 = %q", chunks[0].Text)
	}
}

func TestPreprocess(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  hello   world  ", "hello world"},
		{"line\none\n\nline two", "line one line two"},
		{"tabs\tand spaces", "tabs and spaces"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Preprocess(tt.in); got != tt.want {
			t.Errorf("Preprocess(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
