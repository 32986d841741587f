package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/tilsley/repotext/pkg/ingest"
)

const (
	usageMessage             = "You can use this API by going to /{owner}/{repository}/{branch}"
	missingRepositoryMessage = "Please add your repository"
	fetchFailedMessage       = "Failed to fetch repository"
	decodeFailedMessage      = "Failed to decode repository archive"
	internalErrorMessage     = "Internal server error"

	textContentType = "text/plain; charset=utf-8"
)

// OpenAPI handles GET /openapi.json and serves the embedded API description.
func (h *Handler) OpenAPI(c *gin.Context) {
	c.Data(http.StatusOK, gin.MIMEJSON, h.openapi)
}

// Usage handles GET / and tells the caller how to address a repository.
func (h *Handler) Usage(c *gin.Context) {
	h.respondError(c, http.StatusNotFound, usageMessage)
}

// MissingRepository handles GET /:owner, where an owner alone is not enough.
func (h *Handler) MissingRepository(c *gin.Context) {
	h.respondError(c, http.StatusNotFound, missingRepositoryMessage)
}

// RedirectToDefaultBranch handles GET /:owner/:repo by sending the caller to the
// default branch, keeping any filter query.
func (h *Handler) RedirectToDefaultBranch(c *gin.Context) {
	target := "/" + url.PathEscape(c.Param("owner")) +
		"/" + url.PathEscape(c.Param("repo")) +
		"/" + url.PathEscape(h.defaultBranch)
	if q := c.Request.URL.RawQuery; q != "" {
		target += "?" + q
	}
	c.Redirect(http.StatusFound, target)
}

// RepositoryFiles handles GET /:owner/:repo/:branch. It fetches the branch
// archive and returns the filtered files as JSON or concatenated text.
func (h *Handler) RepositoryFiles(c *gin.Context) {
	req := archiveRequest(c)

	res, err := h.svc.Ingest(c.Request.Context(), req)
	if err != nil {
		status, msg := errorResponse(err)
		_ = c.Error(err) //nolint:errcheck // surfaced by the request logger
		h.log.Error("failed to ingest repository",
			"owner", req.Owner, "repo", req.Repo, "branch", req.Branch,
			"status", status, "error", err)
		h.respondError(c, status, msg)
		return
	}

	if wantsJSON(c) {
		c.PureJSON(http.StatusOK, res.Document())
		return
	}
	c.Data(http.StatusOK, textContentType, []byte(res.Text()))
}

func archiveRequest(c *gin.Context) ingest.ArchiveRequest {
	include, hasInclude := c.GetQuery("include-ext")
	excludeExt, hasExcludeExt := c.GetQuery("exclude-ext")
	excludeDir, hasExcludeDir := c.GetQuery("exclude-dir")

	return ingest.ArchiveRequest{
		Owner:      c.Param("owner"),
		Repo:       c.Param("repo"),
		Branch:     c.Param("branch"),
		IncludeExt: ingest.ParseList(include, hasInclude),
		ExcludeExt: ingest.ParseList(excludeExt, hasExcludeExt),
		ExcludeDir: ingest.ParseList(excludeDir, hasExcludeDir),
	}
}

// errorResponse maps a pipeline failure to a status code and client message.
func errorResponse(err error) (int, string) {
	var (
		missing   ingest.MissingParameterError
		transport ingest.TransportError
		malformed ingest.MalformedArchiveError
	)
	switch {
	case errors.As(err, &missing):
		if missing.Name == "owner" {
			return http.StatusNotFound, usageMessage
		}
		return http.StatusNotFound, missingRepositoryMessage
	case errors.As(err, &transport):
		return transport.Status(), fetchFailedMessage
	case errors.As(err, &malformed):
		return http.StatusBadGateway, decodeFailedMessage
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEPlain, gin.MIMEJSON) == gin.MIMEJSON
}

func (h *Handler) respondError(c *gin.Context, status int, msg string) {
	if wantsJSON(c) {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.Data(status, textContentType, []byte(msg))
}
