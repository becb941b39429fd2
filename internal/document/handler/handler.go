package handler

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/nodedoc/internal/document"
	"github.com/gogotex/nodedoc/internal/document/service"
	"github.com/gogotex/nodedoc/internal/node"
	"github.com/gogotex/nodedoc/pkg/logger"
)

type nodeJSON struct {
	Name string `json:"name"`
	Flag bool   `json:"flag"`
}

func nodesJSON(d *document.Document) []nodeJSON {
	out := make([]nodeJSON, 0, d.Len())
	for _, n := range d.Nodes() {
		out = append(out, nodeJSON{Name: n.Key(), Flag: n.Flag()})
	}
	// map order is random; sort for stable responses
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmptyKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, node.ErrMalformedRecord):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stored document is malformed"})
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func RegisterDocumentRoutes(r gin.IRouter, svc service.Service) {
	r.GET("/api/documents", func(c *gin.Context) {
		ids, err := svc.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ids": ids})
	})

	r.POST("/api/documents", func(c *gin.Context) {
		var req struct {
			ID string `json:"id"`
		}
		// an empty body asks for a generated id
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		d, err := svc.Create(c.Request.Context(), req.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": d.ID, "createdAt": d.CreatedAt})
	})

	r.GET("/api/documents/:id", func(c *gin.Context) {
		d, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": d.ID, "createdAt": d.CreatedAt, "updatedAt": d.UpdatedAt, "nodes": nodesJSON(d)})
	})

	r.DELETE("/api/documents/:id", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.GET("/api/documents/:id/nodes", func(c *gin.Context) {
		d, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, nodesJSON(d))
	})

	r.GET("/api/documents/:id/nodes/:key", func(c *gin.Context) {
		d, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		n, ok := d.Node(c.Param("key"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "node not found"})
			return
		}
		c.JSON(http.StatusOK, nodeJSON{Name: n.Key(), Flag: n.Flag()})
	})

	r.PUT("/api/documents/:id/nodes/:key", func(c *gin.Context) {
		var req struct {
			Flag *bool `json:"flag"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Flag == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "flag is required"})
			return
		}
		key := c.Param("key")
		created, err := svc.SetNode(c.Request.Context(), c.Param("id"), key, *req.Flag)
		if err != nil {
			writeError(c, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, nodeJSON{Name: node.New(nil, key, *req.Flag).Key(), Flag: *req.Flag})
	})

	r.DELETE("/api/documents/:id/nodes/:key", func(c *gin.Context) {
		removed, err := svc.RemoveNode(c.Request.Context(), c.Param("id"), c.Param("key"))
		if err != nil {
			writeError(c, err)
			return
		}
		if !removed {
			c.JSON(http.StatusNotFound, gin.H{"error": "node not found"})
			return
		}
		c.Status(http.StatusNoContent)
	})
}
