package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dyluth/lore/internal/catalog"
	"github.com/dyluth/lore/internal/lesson"
	"github.com/dyluth/lore/internal/lint"
)

var (
	pageTmpl  = template.Must(template.New("page").Parse(pageHTML))
	indexTmpl = template.Must(template.New("index").Parse(indexHTML))
)

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} · lore</title>
<style>
body { max-width: 48rem; margin: 0 auto; padding: 0 1rem 4rem; font-family: system-ui, sans-serif; line-height: 1.6; color: #1f2328; }
header { padding: 0.75rem 0; border-bottom: 1px solid #d1d9e0; margin-bottom: 1.5rem; }
header a { font-weight: 600; color: inherit; text-decoration: none; }
header .ref { color: #59636e; margin-left: 0.5rem; }
a { color: #0969da; }
pre { background: #f6f8fa; padding: 0.75rem; border-radius: 6px; overflow-x: auto; }
code { background: #f6f8fa; padding: 0.1em 0.3em; border-radius: 4px; font-size: 0.9em; }
pre code { padding: 0; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d1d9e0; padding: 0.3rem 0.75rem; }
blockquote { margin-left: 0; padding-left: 1rem; border-left: 3px solid #d1d9e0; color: #59636e; }
footer { display: flex; justify-content: space-between; margin-top: 2.5rem; padding-top: 1rem; border-top: 1px solid #d1d9e0; }
footer .next { margin-left: auto; }
ul.lessons small { color: #59636e; }
</style>
</head>
<body>
<header><a href="/">lore</a>{{if .Ref}}<span class="ref">{{.Ref}}</span>{{end}}</header>
<main>{{.Body}}</main>
{{if or .Prev .Next}}<footer>
{{if .Prev}}<a class="prev" href="{{.Prev.Href}}">&larr; {{.Prev.Label}}</a>{{end}}
{{if .Next}}<a class="next" href="{{.Next.Href}}">{{.Next.Label}} &rarr;</a>{{end}}
</footer>{{end}}
</body>
</html>
`

const indexHTML = `<h1>Lessons</h1>
{{if .Groups}}<p>{{.Count}} lesson{{if ne .Count 1}}s{{end}}</p>
{{range .Groups}}<h2>{{.Level}}</h2>
<ul class="lessons">
{{range .Lessons}}<li><a href="/lessons/{{.Ref}}">{{.Title}}</a> <small>{{.Category}} · difficulty {{.Difficulty}}{{if .Lab}} · lab{{end}}</small></li>
{{end}}</ul>
{{end}}{{else}}<p>No lessons yet. Create one with <code>lore new</code>.</p>
{{end}}`

type pageData struct {
	Title string
	Ref   string
	Body  template.HTML
	Prev  *navLink
	Next  *navLink
}

type navLink struct {
	Href  string
	Label string
}

type indexData struct {
	Count  int
	Groups []indexGroup
}

type indexGroup struct {
	Level   string
	Lessons []indexLesson
}

type indexLesson struct {
	Ref        string
	Title      string
	Category   string
	Difficulty int
	Lab        bool
}

type healthResponse struct {
	Status  string `json:"status"`
	Lessons int    `json:"lessons"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleHealthz(c *gin.Context) {
	// Scan tolerates missing level directories, so check the root itself.
	if _, err := os.Stat(s.cfg.Root); err != nil {
		c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Error: fmt.Sprintf("content root unavailable: %v", err)})
		return
	}
	cat, err := catalog.Scan(s.cfg)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, healthResponse{Status: "healthy", Lessons: len(cat.Lessons)})
}

func (s *Server) handleIndex(c *gin.Context) {
	cat, ok := s.scan(c)
	if !ok {
		return
	}

	data := indexData{}
	for _, level := range s.cfg.LevelDirs() {
		group := indexGroup{Level: string(level)}
		for _, l := range cat.Lessons {
			if l.Level != level || l.Meta.Deprecated {
				continue
			}
			group.Lessons = append(group.Lessons, indexLesson{
				Ref:        l.Ref(),
				Title:      l.Meta.Title,
				Category:   l.Meta.Category,
				Difficulty: l.Meta.Difficulty,
				Lab:        l.HasLab,
			})
		}
		if len(group.Lessons) > 0 {
			data.Count += len(group.Lessons)
			data.Groups = append(data.Groups, group)
		}
	}

	var body bytes.Buffer
	if err := indexTmpl.Execute(&body, data); err != nil {
		s.fail(c, "failed to render index", err)
		return
	}
	s.renderPage(c, pageData{Title: "Lessons", Body: template.HTML(body.String())})
}

// handleLesson serves the lesson's entry point: the first file of its
// reading sequence, problem.md for any complete lesson.
func (s *Server) handleLesson(c *gin.Context) {
	l, ok := s.lookup(c)
	if !ok {
		return
	}

	seq := l.Sequence()
	if len(seq) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("lesson %s has no markdown content", l.Ref())})
		return
	}
	s.serveMarkdown(c, l, seq[0])
}

func (s *Server) handleLessonFile(c *gin.Context) {
	l, ok := s.lookup(c)
	if !ok {
		return
	}

	rel := path.Clean(strings.TrimPrefix(c.Param("file"), "/"))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid file path"})
		return
	}

	if strings.HasSuffix(rel, ".md") {
		s.serveMarkdown(c, l, rel)
		return
	}

	// Non-markdown files (images, lab assets) are served as-is.
	abs := filepath.Join(l.Dir, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no file %s in lesson %s", rel, l.Ref())})
		return
	}
	c.File(abs)
}

func (s *Server) handleAPILessons(c *gin.Context) {
	cat, ok := s.scan(c)
	if !ok {
		return
	}

	fc := catalog.FilterCriteria{
		Category:          c.Query("category"),
		Tag:               c.Query("tag"),
		WithLab:           c.Query("lab") == "true",
		IncludeDeprecated: c.Query("deprecated") == "true",
	}
	if lv := c.Query("level"); lv != "" {
		level, err := lesson.ParseLevel(lv)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fc.Level = level
	}

	lessons := fc.Apply(cat.Lessons)
	records := make([]catalog.Record, 0, len(lessons))
	for _, l := range lessons {
		records = append(records, catalog.ToRecord(l, false))
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleAPILesson(c *gin.Context) {
	l, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, catalog.ToRecord(l, true))
}

func (s *Server) serveMarkdown(c *gin.Context, l *lesson.Lesson, rel string) {
	source, err := os.ReadFile(filepath.Join(l.Dir, filepath.FromSlash(rel)))
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no file %s in lesson %s", rel, l.Ref())})
			return
		}
		s.fail(c, "failed to read lesson file", err)
		return
	}

	body, err := s.html.Render(source, s.rewriteDest(l, rel))
	if err != nil {
		s.fail(c, "failed to render markdown", err)
		return
	}

	data := pageData{
		Title: l.Meta.Title,
		Ref:   l.Ref(),
		Body:  template.HTML(body),
	}
	if rel != lesson.ProblemFile {
		data.Title = fmt.Sprintf("%s · %s", l.Meta.Title, fileLabel(rel))
	}

	// Sequence navigation applies only to the top-level reading files.
	if path.Dir(rel) == "." {
		seq := l.Sequence()
		for i, f := range seq {
			if f != rel {
				continue
			}
			if i > 0 {
				data.Prev = &navLink{Href: routeFor(l, seq[i-1]), Label: fileLabel(seq[i-1])}
			}
			if i+1 < len(seq) {
				data.Next = &navLink{Href: routeFor(l, seq[i+1]), Label: fileLabel(seq[i+1])}
			}
			break
		}
	}

	s.renderPage(c, data)
}

func (s *Server) renderPage(c *gin.Context, data pageData) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		s.fail(c, "failed to render page", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// rewriteDest maps relative markdown destinations in the file `from` to their
// serving routes, so following a lesson's links stays inside the server.
// External URLs, fragments and anything escaping the lesson directory are
// left untouched.
func (s *Server) rewriteDest(l *lesson.Lesson, from string) func(string) string {
	base := path.Dir(from)
	return func(dest string) string {
		if lint.IsExternal(dest) {
			return dest
		}
		target := lint.TargetPath(dest)
		if target == "" || strings.HasPrefix(target, "/") {
			return dest
		}
		suffix := dest[len(target):]
		cleaned := path.Clean(path.Join(base, target))
		if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
			return dest
		}
		return "/lessons/" + l.Ref() + "/" + cleaned + suffix
	}
}

func (s *Server) scan(c *gin.Context) (*catalog.Catalog, bool) {
	cat, err := catalog.Scan(s.cfg)
	if err != nil {
		s.fail(c, "failed to scan lessons", err)
		return nil, false
	}
	return cat, true
}

func (s *Server) lookup(c *gin.Context) (*lesson.Lesson, bool) {
	level, err := lesson.ParseLevel(c.Param("level"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}

	cat, ok := s.scan(c)
	if !ok {
		return nil, false
	}

	ref := fmt.Sprintf("%s/%s", level, c.Param("slug"))
	l, found := cat.ByRef(ref)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no lesson %s", ref)})
		return nil, false
	}
	return l, true
}

func (s *Server) fail(c *gin.Context, msg string, err error) {
	s.log.Errorw(msg, "error", err, "path", c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func routeFor(l *lesson.Lesson, name string) string {
	return "/lessons/" + l.Ref() + "/" + name
}

func fileLabel(name string) string {
	switch name {
	case lesson.ProblemFile:
		return "Problem"
	case lesson.SolutionFile:
		return "Solution"
	}
	if n, ok := lesson.StepNumber(name); ok {
		return fmt.Sprintf("Step %d", n)
	}
	return name
}
