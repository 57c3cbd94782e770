package main

import "html/template"

var (
	tmpl      *template.Template
	templates = map[string]string{
		"index": indexTemplate,
	}
)

const indexTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>[[.Package]] resources</title>
</head>
<body>
<h2>[[.Package]]</h2>
<p>Configuration: <code>[[if .Config]][[.Config]][[else]]default[[end]]</code></p>
<p>Locales: [[range .Locales]]<code>[[.]]</code> [[end]]</p>
<table>
<tr><th>ID</th><th>Name</th><th>Variants</th></tr>
[[range .Resources]]<tr>
<td><a href="/api/resources/[[.ID]]">[[.ID]]</a></td>
<td>[[.Name]][[if .Bag]] <a href="/api/bags/[[.ID]]">bag</a>[[end]]</td>
<td>[[range .Configs]]<code>[[if .]][[.]][[else]]default[[end]]</code> [[end]]</td>
</tr>
[[end]]</table>
</body>
</html>
`

func init() {
	for name, content := range templates {
		ParseTemplate(name, content)
	}
}

func ParseTemplate(name string, content string) {
	if tmpl == nil {
		tmpl = template.New(name)
	}
	var t *template.Template
	if tmpl.Name() == name {
		t = tmpl
	} else {
		t = tmpl.New(name)
	}
	template.Must(t.New(name).Delims("[[", "]]").Parse(content))
}
