package echoweb

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mzalendo/kazi/core"
	"github.com/mzalendo/kazi/core/project"
)

// pageRenderer serves the server-rendered pages. html/template escapes all
// interpolated values contextually, so user-entered titles, links and
// feedback render inert.
type pageRenderer struct {
	once  sync.Once
	pages map[string]*template.Template
}

var _ echo.Renderer = (*pageRenderer)(nil)

func newPageRenderer() *pageRenderer {
	return &pageRenderer{}
}

var pageFuncs = template.FuncMap{
	// formatTime renders an instant for display.
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("Jan 2, 2006 3:04 PM")
	},
	// inputTime renders an instant the way <input type="datetime-local"> wants it.
	"inputTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format(project.DueInputLayout)
	},
}

func (r *pageRenderer) Render(w io.Writer, name string, data interface{}, ctx echo.Context) error {
	r.once.Do(r.parsePages)
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page template %q", name)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

func (r *pageRenderer) parsePages() {
	r.pages = make(map[string]*template.Template)

	rp := filepath.Join(core.Conf.WorkDir, "assets", "templates", "pages")
	fps, err := filepath.Glob(filepath.Join(rp, "*.gohtml"))
	if err != nil {
		log.Print(fmt.Errorf("echoweb.parsePages: %v", err))
	}

	base := filepath.Join(rp, "_base.gohtml")
	for _, fp := range fps {
		fname := filepath.Base(fp)
		if strings.HasPrefix(fname, "_") {
			continue
		}
		name := strings.TrimSuffix(fname, ".gohtml")
		tmpl, err := template.New("base").Funcs(pageFuncs).ParseFiles(base, fp)
		if err != nil {
			log.Print(fmt.Errorf("echoweb.parsePages(%s): %v", fname, err))
			continue
		}
		r.pages[name] = tmpl
	}
}
