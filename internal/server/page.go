package server

import "html/template"

var pageTemplate = template.Must(template.New("login").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width,initial-scale=1">
  <title>Login</title>
  <style>
    body { font-family: system-ui, sans-serif; background:#f1f5f9; display:flex; justify-content:center; padding-top:10vh; }
    form { background:#fff; border:1px solid #cbd5e1; border-radius:10px; padding:24px; width:320px; }
    label { display:block; font-size:14px; margin:12px 0 4px; }
    input, textarea { display:block; width:100%; box-sizing:border-box; padding:8px 10px; font-size:15px; }
    button { margin-top:16px; padding:8px 16px; }
    textarea { margin-top:16px; height:7em; font-family:monospace; resize:none; }
  </style>
</head>
<body>
  <form method="post" action="/">
    <label for="username">Username</label>
    <input id="username" name="username" autocomplete="username" value="{{.Username}}">
    <label for="password">Password</label>
    <input id="password" name="password" type="password" autocomplete="current-password">
    <button type="submit">Submit</button>
    <textarea id="status" readonly aria-label="Status">{{.Status}}</textarea>
  </form>
</body>
</html>
`))

type pageData struct {
	Username string
	Status   string
}
