package echo

import (
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Terminal pages shown in the user's browser after the provider redirect.
// The device never sees these; it learns the outcome through polling.

var successPage = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Authorized - readsync</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
  background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); min-height: 100vh;
  display: flex; align-items: center; justify-content: center; padding: 20px; margin: 0; }
.card { background: #fff; border-radius: 16px; box-shadow: 0 20px 60px rgba(0,0,0,.3);
  max-width: 480px; width: 100%; padding: 40px; text-align: center; }
h1 { color: #333; font-size: 26px; margin: 0 0 8px; }
p { color: #666; margin: 0 0 12px; }
.device { background: #f4f5f7; border-radius: 8px; padding: 10px 14px; display: inline-block;
  font-family: monospace; color: #444; }
</style>
</head>
<body>
<div class="card">
<h1>Authorization Successful</h1>
<p>Signed in as <strong>{{.Username}}</strong></p>
<p class="device">{{.DeviceID}}</p>
<p>You can close this page and return to your Kindle.</p>
</div>
</body>
</html>
`))

var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}} - readsync</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
  background: linear-gradient(135deg, #f5576c 0%, #f093fb 100%); min-height: 100vh;
  display: flex; align-items: center; justify-content: center; padding: 20px; margin: 0; }
.card { background: #fff; border-radius: 16px; box-shadow: 0 20px 60px rgba(0,0,0,.3);
  max-width: 480px; width: 100%; padding: 40px; text-align: center; }
h1 { color: #333; font-size: 26px; margin: 0 0 8px; }
p { color: #666; margin: 0; }
</style>
</head>
<body>
<div class="card">
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
</div>
</body>
</html>
`))

func renderSuccessPage(c echo.Context, username, deviceID string) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return successPage.Execute(c.Response(), struct {
		Username string
		DeviceID string
	}{Username: username, DeviceID: deviceID})
}

func renderErrorPage(c echo.Context, title, message string) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return errorPage.Execute(c.Response(), struct {
		Title   string
		Message string
	}{Title: title, Message: message})
}
