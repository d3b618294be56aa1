package server

import "html/template"

var uploadFormTemplate = template.Must(template.New("upload").Parse(`<!DOCTYPE html>
<html>
<head><title>Upload video</title></head>
<body>
<h1>Upload a video</h1>
<form method="post" action="/upload" enctype="multipart/form-data">
<input type="file" name="file" accept="video/*">
<input type="submit" value="Upload">
</form>
<p><a href="/processed_files">Processed files</a></p>
</body>
</html>
`))

var processedListTemplate = template.Must(template.New("processed").Parse(`<!DOCTYPE html>
<html>
<head><title>Processed files</title></head>
<body>
<h1>Processed files</h1>
{{if .}}<ul>
{{range .}}<li><a href="/processed_files/{{.}}">{{.}}</a></li>
{{end}}</ul>
{{else}}<p>No processed files yet.</p>
{{end}}<p><a href="/">Upload another video</a></p>
</body>
</html>
`))
