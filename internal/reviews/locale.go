package reviews

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

type Lang string

const (
	LangEN Lang = "en"
	LangES Lang = "es"
)

// ParseLang maps a page's declared language to the two supported ones:
// exactly "es" is Spanish, anything else is English.
func ParseLang(s string) Lang {
	if strings.EqualFold(strings.TrimSpace(s), string(LangES)) {
		return LangES
	}
	return LangEN
}

var langMatcher = language.NewMatcher([]language.Tag{language.English, language.Spanish})

// NegotiateLang picks a language from an Accept-Language header. It is only
// used when the request does not carry an explicit lang.
func NegotiateLang(acceptLanguage string) Lang {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return LangEN
	}
	_, idx, conf := langMatcher.Match(tags...)
	if idx == 1 && conf != language.No {
		return LangES
	}
	return LangEN
}

// Text is every user-visible string a page needs.
type Text struct {
	Title        string
	WriteReview  string
	Empty        string
	ReplyLabel   string
	ReplyButton  string
	Prompt       string
	Save         string
	Cancel       string
	FormTitle    string
	RatingLabel  string
	CommentLabel string
	Submit       string
}

var texts = map[Lang]Text{
	LangEN: {
		Title:        "Testimonials",
		WriteReview:  "Write a review",
		Empty:        "No testimonials yet.",
		ReplyLabel:   "Reply: ",
		ReplyButton:  "Reply",
		Prompt:       "Enter your reply:",
		Save:         "Save",
		Cancel:       "Cancel",
		FormTitle:    "Leave a review",
		RatingLabel:  "Rating",
		CommentLabel: "Comment",
		Submit:       "Submit",
	},
	LangES: {
		Title:        "Testimonios",
		WriteReview:  "Escribe una reseña",
		Empty:        "Aún no hay testimonios.",
		ReplyLabel:   "Respuesta: ",
		ReplyButton:  "Responder",
		Prompt:       "Escribe tu respuesta:",
		Save:         "Guardar",
		Cancel:       "Cancelar",
		FormTitle:    "Deja tu reseña",
		RatingLabel:  "Calificación",
		CommentLabel: "Comentario",
		Submit:       "Enviar",
	},
}

func (l Lang) Text() Text {
	if t, ok := texts[l]; ok {
		return t
	}
	return texts[LangEN]
}

// TestimonialsPath is where a successful submission redirects.
func (l Lang) TestimonialsPath() string {
	if l == LangES {
		return "/testimonios"
	}
	return "/testimonials"
}

// FormPath is the submit-only page for the language.
func (l Lang) FormPath() string {
	if l == LangES {
		return "/resena"
	}
	return "/review"
}

var esMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatDate renders a creation date with the month spelled out:
// "January 5, 2024" or "5 de enero de 2024".
func FormatDate(t time.Time, l Lang) string {
	if l == LangES {
		return fmt.Sprintf("%d de %s de %d", t.Day(), esMonths[t.Month()-1], t.Year())
	}
	return t.Format("January 2, 2006")
}
