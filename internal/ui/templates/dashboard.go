// Package templates renders the dashboard shell. The page is static; every
// table and chart on it is filled in over SSE or the JSON API.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const dashboardHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>BizPulse</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body{font-family:system-ui,Segoe UI,Roboto,Arial;background:#0b1020;color:#e8ecff;margin:0;padding:20px}
.card{background:#111837;border:1px solid #203063;border-radius:14px;padding:16px;margin:12px 0}
h1{margin:0 0 10px 0}.muted{color:#9aa7cf}
.modern-table{width:100%;border-collapse:collapse}
.modern-table th,.modern-table td{border-bottom:1px solid #22305f;padding:8px;text-align:left}
button{background:#7aa2ff;color:#04102a;border:none;padding:8px 12px;border-radius:10px;cursor:pointer}
input{margin:4px 0;padding:6px;border-radius:8px;border:1px solid #203063;background:#0b1020;color:#e8ecff}
</style>
</head>
<body>
<h1>BizPulse</h1>
<p class="muted">Sign up or log in, then upload a sales CSV with columns:
Order Date, Product, Customer ID, Quantity, Unit Price (Region, Category and
Total Revenue are optional).</p>

<div class="card">
  <h3>Upload sales CSV</h3>
  <form method="POST" action="/api/upload" enctype="multipart/form-data">
    <input type="file" name="file" accept=".csv" required>
    <button type="submit">Analyze</button>
  </form>
</div>

<div class="card">
  <h3>Monthly revenue</h3>
  <div id="monthly-content" data-on-load="@get('/sse/monthly-revenue')"><p class="muted">No data yet.</p></div>
</div>

<div class="card">
  <h3>Top products</h3>
  <div id="products-content" data-on-load="@get('/sse/top-products')"><p class="muted">No data yet.</p></div>
</div>

<div class="card">
  <button data-on-click="@get('/sse/report')">Refresh all</button>
</div>
</body>
</html>
`

// Dashboard is the single HTML page of the application.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardHTML)
		return err
	})
}
