package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zip"

	"github.com/tilsley/repotext/pkg/logging"
)

// repoFile is one file of a seeded branch. Order is preserved in archives.
type repoFile struct {
	Path    string
	Content []byte
}

// store holds branch contents keyed by "owner/repo" then ref.
type store struct {
	mu    sync.RWMutex
	repos map[string]map[string][]repoFile
}

func newStore() *store {
	return &store{repos: make(map[string]map[string][]repoFile)}
}

func (s *store) put(owner, repo, ref string, files []repoFile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := owner + "/" + repo
	if s.repos[key] == nil {
		s.repos[key] = make(map[string][]repoFile)
	}
	s.repos[key][ref] = files
}

func (s *store) branch(owner, repo, ref string) ([]repoFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, ok := s.repos[owner+"/"+repo][ref]
	return files, ok
}

func (s *store) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.repos)
}

func main() {
	log := logging.New()
	s := newStore()

	// Seed repos with initial file content
	seedRepos(s)
	log.Info("seeded repos", "repos", s.count())

	r := gin.Default()
	registerArchiveRoutes(r, s, log)

	port := os.Getenv("PORT")
	if port == "" {
		port = "9090"
	}

	log.Info("mock-github starting", "port", port)
	if err := r.Run(":" + port); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func registerArchiveRoutes(r *gin.Engine, s *store, log *slog.Logger) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Branch download endpoint, mirrors
	// https://github.com/:owner/:repo/archive/refs/heads/:ref.zip
	r.GET("/:owner/:repo/archive/refs/heads/*ref", func(c *gin.Context) {
		owner := c.Param("owner")
		repo := c.Param("repo")
		ref, ok := strings.CutSuffix(strings.TrimPrefix(c.Param("ref"), "/"), ".zip")
		if !ok {
			c.String(http.StatusNotFound, "Not Found")
			return
		}
		files, found := s.branch(owner, repo, ref)
		if !found {
			c.String(http.StatusNotFound, "Not Found")
			return
		}

		root := archiveRoot(repo, ref)
		c.Header("Content-Type", "application/zip")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.zip", root))
		c.Status(http.StatusOK)
		if err := writeZip(c.Writer, root, files); err != nil {
			log.Error("failed to write archive", "owner", owner, "repo", repo, "ref", ref, "error", err)
		}
	})

	// REST zipball endpoint. GitHub answers with an absolute redirect to
	// codeload; the mock redirects to its own branch download route.
	r.GET("/repos/:owner/:repo/zipball/*ref", func(c *gin.Context) {
		owner := c.Param("owner")
		repo := c.Param("repo")
		ref := strings.TrimPrefix(c.Param("ref"), "/")
		if _, found := s.branch(owner, repo, ref); !found {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
			return
		}
		c.Redirect(http.StatusFound, fmt.Sprintf("%s://%s/%s/%s/archive/refs/heads/%s.zip",
			scheme(c.Request), c.Request.Host, owner, repo, ref))
	})
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// archiveRoot is the single top-level directory GitHub wraps branch archives
// in, e.g. "site-main" or "site-feature-x" for ref "feature/x".
func archiveRoot(repo, ref string) string {
	return repo + "-" + strings.ReplaceAll(ref, "/", "-")
}

// writeZip writes files under root/ with an explicit entry for every
// directory, the way GitHub's archives are laid out.
func writeZip(w io.Writer, root string, files []repoFile) error {
	zw := zip.NewWriter(w)

	dirs := map[string]bool{}
	addDir := func(dir string) error {
		if dirs[dir] {
			return nil
		}
		dirs[dir] = true
		_, err := zw.Create(dir + "/")
		return err
	}
	if err := addDir(root); err != nil {
		return err
	}

	for _, f := range files {
		parts := strings.Split(f.Path, "/")
		for i := 1; i < len(parts); i++ {
			if err := addDir(root + "/" + strings.Join(parts[:i], "/")); err != nil {
				return err
			}
		}
		fw, err := zw.Create(root + "/" + f.Path)
		if err != nil {
			return err
		}
		if _, err := fw.Write(f.Content); err != nil {
			return err
		}
	}
	return zw.Close()
}

// sortedFiles builds a branch from a path → content map in path order.
func sortedFiles(m map[string]string) []repoFile {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	files := make([]repoFile, 0, len(paths))
	for _, p := range paths {
		files = append(files, repoFile{Path: p, Content: []byte(m[p])})
	}
	return files
}
