package reviews

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/gin-gonic/gin/render"

	"testimonials/pkg/models"
)

const (
	filledStar = "★"
	emptyStar  = "☆"
	maxStars   = 5
)

// Stars draws exactly five glyphs for a rating. Ratings outside 0..5 can
// only come from an externally edited store and are clamped.
func Stars(rating int) string {
	r := min(max(rating, 0), maxStars)
	return strings.Repeat(filledStar, r) + strings.Repeat(emptyStar, maxStars-r)
}

// Block is the display model of one review.
type Block struct {
	Ref         string
	Stars       string
	Comment     string
	Date        string
	HasReply    bool
	ReplyLabel  string
	Reply       string
	ButtonLabel string
}

func Render(reviews []models.Review, lang Lang) []Block {
	text := lang.Text()
	blocks := make([]Block, 0, len(reviews))
	for i, r := range reviews {
		b := Block{
			Ref:         r.Ref(i),
			Stars:       Stars(r.Rating),
			Comment:     r.Comment,
			Date:        r.Date,
			ButtonLabel: text.ReplyButton,
		}
		if r.Reply != "" {
			b.HasReply = true
			b.ReplyLabel = text.ReplyLabel
			b.Reply = r.Reply
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// PageData feeds every template.
type PageData struct {
	Lang    Lang
	Text    Text
	Blocks  []Block
	Ratings []int

	// reply dialog
	Ref      string
	Existing string
	Review   *Block
}

func NewPageData(lang Lang) PageData {
	return PageData{Lang: lang, Text: lang.Text(), Ratings: []int{1, 2, 3, 4, 5}}
}

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer owns the parsed page templates. html/template escapes every
// stored string, so comments and replies always render as literal text.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) HTML(name string, data any) render.HTML {
	return render.HTML{Template: r.tmpl, Name: name, Data: data}
}
