package reviews

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"testimonials/pkg/logging"
)

type Handler struct {
	Service  *Service
	Renderer *Renderer
	Logger   *zap.Logger
}

func NewHandler(svc *Service, renderer *Renderer, logger *zap.Logger) *Handler {
	return &Handler{Service: svc, Renderer: renderer, Logger: logging.OrNop(logger)}
}

// RegisterPageRoutes mounts the HTML pages and form endpoints.
func (h *Handler) RegisterPageRoutes(r gin.IRoutes) {
	r.GET("/testimonials", h.page(LangEN))
	r.GET("/testimonios", h.page(LangES))
	r.GET("/review", h.form(LangEN))
	r.GET("/resena", h.form(LangES))
	r.POST("/reviews", h.submitForm)
	r.GET("/reviews/fragment", h.fragment)
	r.GET("/reviews/:ref/reply", h.replyDialog)
	r.POST("/reviews/:ref/reply", h.replyForm)
}

// RegisterAPIRoutes mounts the JSON API.
func (h *Handler) RegisterAPIRoutes(rg *gin.RouterGroup) {
	rg.GET("/reviews", h.list)
	rg.POST("/reviews", h.create)
	rg.GET("/reviews/:ref", h.getOne)
	rg.PUT("/reviews/:ref/reply", h.reply)
}

// requestLang prefers the lang the page declared, then Accept-Language.
func requestLang(c *gin.Context) Lang {
	if v, ok := c.GetPostForm("lang"); ok {
		return ParseLang(v)
	}
	if v, ok := c.GetQuery("lang"); ok {
		return ParseLang(v)
	}
	return NegotiateLang(c.GetHeader("Accept-Language"))
}

func (h *Handler) page(lang Lang) gin.HandlerFunc {
	return func(c *gin.Context) {
		data := NewPageData(lang)
		data.Blocks = Render(h.Service.List(c.Request.Context()), lang)
		c.Render(http.StatusOK, h.Renderer.HTML("testimonials", data))
	}
}

func (h *Handler) form(lang Lang) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Render(http.StatusOK, h.Renderer.HTML("form", NewPageData(lang)))
	}
}

func (h *Handler) fragment(c *gin.Context) {
	lang := requestLang(c)
	data := NewPageData(lang)
	data.Blocks = Render(h.Service.List(c.Request.Context()), lang)
	c.Render(http.StatusOK, h.Renderer.HTML("reviews", data))
}

// submitForm drops incomplete submissions without telling the visitor;
// they land back on the form.
func (h *Handler) submitForm(c *gin.Context) {
	lang := requestLang(c)

	in := SubmitInput{Lang: lang}
	if v, ok := c.GetPostForm("rating"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			in.Rating = &n
		}
	}
	if v, ok := c.GetPostForm("comment"); ok {
		in.Comment = &v
	}

	if _, err := h.Service.Submit(c.Request.Context(), in); err != nil {
		if !errors.Is(err, ErrInvalidReview) {
			h.Logger.Error("submit review", zap.Error(err))
		}
		c.Redirect(http.StatusSeeOther, lang.FormPath())
		return
	}

	c.Redirect(http.StatusSeeOther, lang.TestimonialsPath())
}

func (h *Handler) replyDialog(c *gin.Context) {
	lang := requestLang(c)
	ref := c.Param("ref")

	review, idx, err := h.Service.Get(c.Request.Context(), ref)
	if err != nil {
		c.Redirect(http.StatusSeeOther, lang.TestimonialsPath())
		return
	}

	data := NewPageData(lang)
	b := Block{
		Ref:     review.Ref(idx),
		Stars:   Stars(review.Rating),
		Comment: review.Comment,
		Date:    review.Date,
	}
	data.Review = &b
	data.Ref = b.Ref
	data.Existing = review.Reply
	c.Render(http.StatusOK, h.Renderer.HTML("reply", data))
}

func (h *Handler) replyForm(c *gin.Context) {
	lang := requestLang(c)

	if c.PostForm("action") != "cancel" {
		_, err := h.Service.Reply(c.Request.Context(), c.Param("ref"), c.PostForm("reply"))
		if err != nil && !errors.Is(err, ErrReviewNotFound) {
			h.Logger.Error("save reply", zap.Error(err))
		}
	}

	c.Redirect(http.StatusSeeOther, lang.TestimonialsPath())
}

func (h *Handler) list(c *gin.Context) {
	items := h.Service.List(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}

type createReq struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
	Lang    string `json:"lang"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating (1-5) and comment required"})
		return
	}

	lang := NegotiateLang(c.GetHeader("Accept-Language"))
	if req.Lang != "" {
		lang = ParseLang(req.Lang)
	}

	review, err := h.Service.Submit(c.Request.Context(), SubmitInput{
		Rating:  &req.Rating,
		Comment: &req.Comment,
		Lang:    lang,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidReview) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "comment must not be blank"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *Handler) getOne(c *gin.Context) {
	review, _, err := h.Service.Get(c.Request.Context(), c.Param("ref"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, review)
}

type replyReq struct {
	Reply *string `json:"reply" binding:"required"`
}

func (h *Handler) reply(c *gin.Context) {
	var req replyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reply required"})
		return
	}

	review, err := h.Service.Reply(c.Request.Context(), c.Param("ref"), *req.Reply)
	if err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reply failed"})
		return
	}

	c.JSON(http.StatusOK, review)
}
