package server

import "html/template"

// loadTemplates parses the embedded page templates for gin's HTML renderer.
func loadTemplates() *template.Template {
	t := template.Must(template.New("chat.html").Parse(chatPageHTML))
	template.Must(t.New("status.html").Parse(statusPageHTML))
	return t
}

const chatPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>GraphChat</title>
<style>
  body { font-family: sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; }
  .turn { margin: 0.5rem 0; padding: 0.6rem 0.8rem; border-radius: 8px; white-space: pre-wrap; }
  .user { background: #e3f2fd; }
  .assistant { background: #f1f8e9; }
  .role { font-size: 0.75rem; color: #666; text-transform: uppercase; }
  .status { color: #c62828; margin: 0.5rem 0; }
  form { display: flex; gap: 0.5rem; margin-top: 1rem; }
  input[name="user_input"] { flex: 1; padding: 0.5rem; }
  button { padding: 0.5rem 1rem; }
  .links { margin-top: 1.5rem; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>GraphChat</h1>
{{if .StatusMsg}}<p class="status">{{.StatusMsg}}</p>{{end}}
<div id="conversation">
{{range .Conversation}}
  <div class="turn {{.Role}}"><div class="role">{{.Role}}</div>{{.Content}}</div>
{{end}}
</div>
<form method="post" action="/">
  <input type="hidden" name="user_id" value="{{.UserID}}">
  <input type="text" name="user_input" placeholder="Ask the knowledge base..." autofocus required>
  <button type="submit">Send</button>
</form>
<p class="links"><a href="/status">System status</a></p>
</body>
</html>
`

const statusPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>GraphChat Status</title>
<style>
  body { font-family: sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; }
  table { width: 100%; border-collapse: collapse; }
  th, td { text-align: left; padding: 0.5rem; border-bottom: 1px solid #ddd; }
  .label { font-weight: bold; }
  .links { margin-top: 1.5rem; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>System Status</h1>
<table>
  <tr><th>Component</th><th>Details</th><th>Status</th></tr>
{{range .Rows}}
  <tr>
    <td>{{.Component}}</td>
    <td>{{.Details}}</td>
    <td class="label" style="color: {{.Color}}">{{.Label}}</td>
  </tr>
{{end}}
</table>
<p class="links"><a href="/">Back to chat</a></p>
</body>
</html>
`
