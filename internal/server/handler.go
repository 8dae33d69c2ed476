package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-tweetcard"
)

// Response messages.
const (
	msgMissingFields = "missing required fields"
	msgInvalid       = "invalid request"
	msgTooLarge      = "request body too large"
	msgRenderFailed  = "failed to generate image"
)

// errorBody is the JSON error payload.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// statusBody is the GET payload.
type statusBody struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Endpoint string `json:"endpoint"`
}

var statusPayload = statusBody{
	Status:   "ok",
	Message:  "Tweet card generator API",
	Endpoint: "POST /api/generate-tweet",
}

func status(c *gin.Context) {
	c.JSON(http.StatusOK, statusPayload)
}

// generate renders the card described by the JSON body.
func (s *Server) generate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)

	var fields tweetcard.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, errorBody{Error: msgTooLarge})
			return
		}
		c.JSON(http.StatusBadRequest, errorBody{Error: msgInvalid, Details: "malformed JSON body"})
		return
	}

	res, err := s.gen.Generate(c.Request.Context(), fields)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Data(http.StatusOK, "image/png", res.PNG)
}

// renderError maps a Generate error to a response. Only validation details
// reach the client.
func (s *Server) renderError(c *gin.Context, err error) {
	var verr *tweetcard.ValidationError
	if errors.As(err, &verr) {
		if len(verr.Missing) > 0 {
			c.JSON(http.StatusBadRequest, errorBody{Error: msgMissingFields, Details: strings.Join(verr.Missing, ", ")})
			return
		}
		c.JSON(http.StatusBadRequest, errorBody{Error: msgInvalid, Details: strings.Join(verr.InvalidFields(), ", ")})
		return
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": c.GetString(requestIDKey),
		"browser":    tweetcard.IsBrowserError(err),
	}).WithError(err).Error("card generation failed")
	c.JSON(http.StatusInternalServerError, errorBody{Error: msgRenderFailed})
}
