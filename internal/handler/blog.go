package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/media"
	"github.com/pkordes/propnest/internal/service"
)

// BlogPost is the response shape of a post.
type BlogPost struct {
	ID           uuid.UUID `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	ContentHTML  string    `json:"content_html"`
	Excerpt      string    `json:"excerpt"`
	FeatureImage *Image    `json:"feature_image"`
	Author       string    `json:"author"`
	Tags         []string  `json:"tags"`
	Published    bool      `json:"published"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BlogRequest is the body of create and update.
type BlogRequest struct {
	Title     *string  `json:"title" validate:"omitempty,max=200"`
	Content   *string  `json:"content"`
	Excerpt   *string  `json:"excerpt" validate:"omitempty,max=500"`
	Author    *string  `json:"author" validate:"omitempty,max=100"`
	Tags      []string `json:"tags" validate:"omitempty,dive,max=50"`
	Published *bool    `json:"published"`
}

// ListBlogPosts handles GET /api/blog.
func (s *Server) ListBlogPosts(w http.ResponseWriter, r *http.Request) {
	params, ok := pagination(w, r, service.BlogPageDefault, service.BlogPageMax)
	if !ok {
		return
	}
	posts, total, err := s.blog.ListPublished(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err, "post")
		return
	}
	writeJSON(w, http.StatusOK, newPage(mapSlice(posts, blogToResponse), params, total))
}

// GetBlogPost handles GET /api/blog/{slug}.
func (s *Server) GetBlogPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.blog.GetBySlug(r.Context(), chiParam(r, "slug"))
	if err != nil {
		writeServiceError(w, r, err, "post")
		return
	}
	writeJSON(w, http.StatusOK, blogToResponse(p))
}

// GetBlogPostByID handles GET /api/blog/id/{id}.
func (s *Server) GetBlogPostByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "post")
	if !ok {
		return
	}
	p, err := s.blog.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "post")
		return
	}
	writeJSON(w, http.StatusOK, blogToResponse(p))
}

// CreateBlogPost handles POST /api/blog. Accepts JSON or a multipart form
// with an optional "feature_image" file.
func (s *Server) CreateBlogPost(w http.ResponseWriter, r *http.Request) {
	req, feature, done, ok := readBlogRequest(w, r)
	if !ok {
		return
	}
	defer done()
	if req.Title == nil || req.Content == nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("title and content are required"))
		return
	}

	p := domain.BlogPost{Title: *req.Title, Content: *req.Content, Tags: req.Tags, Published: true}
	if req.Excerpt != nil {
		p.Excerpt = *req.Excerpt
	}
	if req.Author != nil {
		p.Author = *req.Author
	}
	if req.Published != nil {
		p.Published = *req.Published
	}

	created, err := s.blog.Create(r.Context(), p, feature)
	if err != nil {
		writeServiceError(w, r, err, "post")
		return
	}
	writeJSON(w, http.StatusCreated, blogToResponse(created))
}

// UpdateBlogPost handles PUT /api/blog/{id}.
func (s *Server) UpdateBlogPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "post")
	if !ok {
		return
	}
	req, feature, done, ok := readBlogRequest(w, r)
	if !ok {
		return
	}
	defer done()

	patch := domain.BlogPatch{
		Title:     req.Title,
		Content:   req.Content,
		Excerpt:   req.Excerpt,
		Author:    req.Author,
		Tags:      req.Tags,
		Published: req.Published,
	}
	updated, err := s.blog.Update(r.Context(), id, patch, feature)
	if err != nil {
		writeServiceError(w, r, err, "post")
		return
	}
	writeJSON(w, http.StatusOK, blogToResponse(updated))
}

// DuplicateBlogPost handles POST /api/blog/{id}/duplicate.
func (s *Server) DuplicateBlogPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "post")
	if !ok {
		return
	}
	dup, err := s.blog.Duplicate(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "post")
		return
	}
	writeJSON(w, http.StatusCreated, blogToResponse(dup))
}

// DeleteBlogPost handles DELETE /api/blog/{id}.
func (s *Server) DeleteBlogPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "post")
	if !ok {
		return
	}
	if err := s.blog.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

func readBlogRequest(w http.ResponseWriter, r *http.Request) (BlogRequest, *media.Upload, func(), bool) {
	noop := func() {}
	if !isMultipart(r) {
		var req BlogRequest
		ok := decodeJSON(w, r, &req)
		return req, nil, noop, ok
	}

	f, err := parseForm(r)
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeServiceError(w, r, err, "")
		} else {
			writeJSON(w, http.StatusUnprocessableEntity, requestBody("malformed multipart body"))
		}
		return BlogRequest{}, nil, noop, false
	}
	req := BlogRequest{
		Title:   f.str("title"),
		Content: f.str("content"),
		Excerpt: f.str("excerpt"),
		Author:  f.str("author"),
	}
	if req.Tags, err = f.list("tags"); err == nil {
		req.Published, err = f.bool("published")
	}
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return req, nil, noop, false
	}
	if !validBody(w, &req) {
		return req, nil, noop, false
	}

	uploads, done, err := f.uploads("feature_image")
	if err != nil {
		writeServiceError(w, r, err, "")
		return req, nil, noop, false
	}
	if len(uploads) == 0 {
		return req, nil, done, true
	}
	return req, &uploads[0], done, true
}

func blogToResponse(p domain.BlogPost) BlogPost {
	resp := BlogPost{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Content:     p.Content,
		ContentHTML: p.ContentHTML,
		Excerpt:     p.Excerpt,
		Author:      p.Author,
		Tags:        p.Tags,
		Published:   p.Published,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if p.FeatureImage != nil {
		img := imageToResponse(*p.FeatureImage)
		resp.FeatureImage = &img
	}
	return resp
}
