package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HttpError struct {
	code int
	error
}

func (e HttpError) Error() string {
	return e.error.Error()
}

func NewHttpError(code int, err error) HttpError {
	return HttpError{
		code:  code,
		error: err,
	}
}

type server struct {
	controller   controller
	maxBodyBytes int64
}

func (s server) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", s.Health)
	r.POST("/corrections", validateBody, s.limitBody, s.Correct)
}

func (s server) Health(c *gin.Context) {
	c.JSON(200, map[string]interface{}{"status": "ok"})
}

func (s server) Correct(c *gin.Context) {
	contentType, ok := allowedContentTypeEnumMap[c.ContentType()]
	if !ok {
		handleError(c, NewHttpError(400, errors.New("invalid content type - must be text/plain or text/html")))
		return
	}

	corrections, err := s.controller.Correct(c.Request.Context(), c.Request.Body, contentType)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		handleError(c, NewHttpError(413, errors.New("request body too large")))
		return
	} else if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(200, corrections)
}

func (s server) limitBody(c *gin.Context) {
	if s.maxBodyBytes > 0 && c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes)
	}
	c.Next()
}

func validateBody(c *gin.Context) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		handleError(c, NewHttpError(400, errors.New("request body missing")))
	} else if _, err := c.Request.Body.Read(nil); err == io.EOF {
		handleError(c, NewHttpError(400, errors.New("request body missing")))
	} else {
		c.Next()
	}
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		abort(c, 500, errors.New("abort called on nil error"))
		return
	}
	var httpErr HttpError
	if errors.As(err, &httpErr) {
		abort(c, httpErr.code, httpErr.error)
		return
	}
	abort(c, 500, err)
}

func abort(c *gin.Context, code int, err error) {
	switch {
	case code <= 500:
		c.JSON(code, map[string]interface{}{
			"status":  code,
			"message": err.Error(),
		})
		c.Abort()
	default:
		_ = c.AbortWithError(code, err)
	}
}
