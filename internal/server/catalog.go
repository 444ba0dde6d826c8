package server

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/domain"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/export"
	"github.com/railzwaylabs/catalogadmin/internal/catalog/interact"
)

const (
	maxUploadBytes = 10 << 20
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type productView struct {
	domain.Product
	ImageURL string `json:"imageUrl,omitempty"`
}

type changeEditRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type editStateView struct {
	State    string             `json:"state"`
	TargetID int64              `json:"target_id,omitempty"`
	Buffer   *domain.EditBuffer `json:"buffer,omitempty"`
}

func (s *Server) ListProducts(c *gin.Context) {
	products, err := s.catalogSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, s.productViews(products))
}

func (s *Server) ReloadProducts(c *gin.Context) {
	products, err := s.catalogSvc.Load(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, s.productViews(products))
}

// CreateProduct accepts the same multipart form the product API does.
func (s *Server) CreateProduct(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := domain.CreateRequest{
		Name:           c.PostForm(domain.FieldName),
		Details:        c.PostForm(domain.FieldDetails),
		Price:          domain.Price(strings.TrimSpace(c.PostForm(domain.FieldPrice))),
		Category:       strings.TrimSpace(c.PostForm(domain.FieldCategory)),
		Size:           strings.TrimSpace(c.PostForm(domain.FieldSize)),
		IdempotencyKey: idempotencyKeyFromHeader(c),
	}

	header, err := c.FormFile(domain.FieldProductImage)
	if err == nil {
		file, err := header.Open()
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		req.Image = &domain.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	if err := s.catalogSvc.Variant().CheckChoices(req.Category, req.Size); err != nil {
		AbortWithError(c, err)
		return
	}

	res, err := s.catalogSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, res)
}

// DeleteProduct requires ?confirm=true; the engine refuses the delete otherwise.
func (s *Server) DeleteProduct(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	ctx := interact.WithConfirmation(c.Request.Context(), confirmed)

	res, err := s.catalogSvc.Delete(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, res)
}

func (s *Server) BeginEdit(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}
	editing, err := s.catalogSvc.BeginEdit(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, editView(editing))
}

func (s *Server) ChangeEdit(c *gin.Context) {
	var req changeEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	editing, err := s.catalogSvc.ChangeEdit(c.Request.Context(), strings.TrimSpace(req.Field), req.Value)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, editView(editing))
}

func (s *Server) SaveEdit(c *gin.Context) {
	res, err := s.catalogSvc.SaveEdit(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, res)
}

func (s *Server) CancelEdit(c *gin.Context) {
	if err := s.catalogSvc.CancelEdit(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, editStateView{State: "idle"})
}

func (s *Server) GetEdit(c *gin.Context) {
	switch state := s.catalogSvc.EditState(c.Request.Context()).(type) {
	case domain.Editing:
		respondData(c, editView(state))
	default:
		respondData(c, editStateView{State: "idle"})
	}
}

func (s *Server) ExportProducts(c *gin.Context) {
	products, err := s.catalogSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, products, s.catalogSvc.Variant(), s.cfg.Remote.BaseURL); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="products.xlsx"`)
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

func (s *Server) productViews(products []domain.Product) []productView {
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, productView{Product: p, ImageURL: p.ImageURL(s.cfg.Remote.BaseURL)})
	}
	return out
}

func editView(e domain.Editing) editStateView {
	buf := e.Buffer
	return editStateView{State: "editing", TargetID: e.TargetID, Buffer: &buf}
}

func productIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return 0, false
	}
	return id, true
}

func idempotencyKeyFromHeader(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("Idempotency-Key"))
}

