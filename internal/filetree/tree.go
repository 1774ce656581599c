// Package filetree groups stored files into folders and renders them as nested lists.
package filetree

import (
	"bytes"
	"html/template"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/noah-isme/gema-assign/internal/models"
)

// Dir is one folder of the tree.
type Dir struct {
	Name    string
	Path    string
	Subdirs []*Dir
	Files   []models.StoredFile
}

// Empty reports whether the folder holds nothing at all.
func (d *Dir) Empty() bool {
	return len(d.Subdirs) == 0 && len(d.Files) == 0
}

// Count returns the number of files in the folder and below.
func (d *Dir) Count() int {
	total := len(d.Files)
	for _, sub := range d.Subdirs {
		total += sub.Count()
	}
	return total
}

// Build arranges files by their file path. Folders and files are sorted by name.
func Build(files []models.StoredFile) *Dir {
	root := &Dir{Path: "/"}
	index := map[string]*Dir{"/": root}

	var ensure func(path string) *Dir
	ensure = func(path string) *Dir {
		if dir, ok := index[path]; ok {
			return dir
		}
		trimmed := strings.Trim(path, "/")
		parentPath := "/"
		name := trimmed
		if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
			parentPath = "/" + trimmed[:idx] + "/"
			name = trimmed[idx+1:]
		}
		parent := ensure(parentPath)
		dir := &Dir{Name: name, Path: path}
		parent.Subdirs = append(parent.Subdirs, dir)
		index[path] = dir
		return dir
	}

	for _, file := range files {
		dir := ensure(models.NormalizeFilePath(file.FilePath))
		dir.Files = append(dir.Files, file)
	}

	sortDir(root)
	return root
}

func sortDir(dir *Dir) {
	sort.Slice(dir.Subdirs, func(i, j int) bool { return dir.Subdirs[i].Name < dir.Subdirs[j].Name })
	sort.SliceStable(dir.Files, func(i, j int) bool { return dir.Files[i].FileName < dir.Files[j].FileName })
	for _, sub := range dir.Subdirs {
		sortDir(sub)
	}
}

// Options tune the rendered markup.
type Options struct {
	// IconBase is the URL prefix of the file-type icons.
	IconBase string
	// Decorate appends extra markup after each file link, e.g. plagiarism report links.
	Decorate func(file models.StoredFile) template.HTML
}

type fileView struct {
	Name     string
	URL      string
	Icon     string
	Extra    template.HTML
	MimeType string
}

type dirView struct {
	Name    string
	Icon    string
	Subdirs []dirView
	Files   []fileView
}

var treeTemplate = template.Must(template.New("tree").Parse(
	`{{define "dir"}}{{if or .Subdirs .Files}}<ul>` +
		`{{range .Subdirs}}<li yuiConfig='{"type":"html"}'><div><img class="icon" alt="{{.Name}}" src="{{.Icon}}" /> {{.Name}}</div> {{template "dir" .}}</li>{{end}}` +
		`{{range .Files}}<li yuiConfig='{"type":"html"}'><div><img class="icon" alt="{{.Name}}" src="{{.Icon}}" /> <a href="{{.URL}}">{{.Name}}</a> {{.Extra}}</div></li>{{end}}` +
		`</ul>{{end}}{{end}}{{template "dir" .}}`))

// Render writes the tree as nested lists. An empty tree renders as the empty string.
func Render(root *Dir, opts Options) (string, error) {
	if root == nil || root.Empty() {
		return "", nil
	}

	var buf bytes.Buffer
	if err := treeTemplate.Execute(&buf, toView(root, opts)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toView(dir *Dir, opts Options) dirView {
	view := dirView{Name: dir.Name, Icon: iconURL(opts.IconBase, "folder")}
	for _, sub := range dir.Subdirs {
		view.Subdirs = append(view.Subdirs, toView(sub, opts))
	}
	for _, file := range dir.Files {
		fv := fileView{
			Name:     file.FileName,
			URL:      file.URL,
			Icon:     iconURL(opts.IconBase, IconFor(file.MimeType)),
			MimeType: file.MimeType,
		}
		if opts.Decorate != nil {
			fv.Extra = opts.Decorate(file)
		}
		view.Files = append(view.Files, fv)
	}
	return view
}

// ChecksumBadge decorates a file with the short form of its content checksum so
// graders can spot identical uploads across submissions.
func ChecksumBadge(file models.StoredFile) template.HTML {
	if len(file.Checksum) < 12 {
		return ""
	}
	var buf bytes.Buffer
	_ = badgeTemplate.Execute(&buf, file.Checksum)
	return template.HTML(buf.String())
}

var badgeTemplate = template.Must(template.New("badge").Parse(
	`<span class="checksum" title="{{.}}">{{slice . 0 12}}</span>`))

func iconURL(base, icon string) string {
	if base == "" {
		base = "/pix/f"
	}
	return strings.TrimRight(base, "/") + "/" + icon + ".png"
}

// IconFor maps a MIME type to the name of its file-type icon.
func IconFor(mime string) string {
	detected := mimetype.Lookup(strings.TrimSpace(strings.ToLower(mime)))
	if detected == nil {
		return "unknown"
	}

	for m := detected; m != nil; m = m.Parent() {
		value := m.String()
		switch {
		case m.Is("application/pdf"):
			return "pdf"
		case m.Is("application/zip"), m.Is("application/gzip"), m.Is("application/x-tar"):
			return "archive"
		case strings.HasPrefix(value, "image/"):
			return "image"
		case strings.HasPrefix(value, "audio/"):
			return "audio"
		case strings.HasPrefix(value, "video/"):
			return "video"
		case strings.HasPrefix(value, "text/"):
			return "text"
		}
	}
	return "unknown"
}
