package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Dashboard is the single page of the app. Charts subscribe to the datastar
// signals the SSE endpoints patch; changing the date range re-fetches
// /sse/refresh-all and every panel recomputes server-side.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardPage)
		return err
	})
}

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>Olist E-Commerce Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@main/bundles/datastar.js"></script>
<script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f5f7fa; color: #1b2733; }
header { background: #074B83; color: #fff; padding: 1rem 2rem; }
main { padding: 1.5rem 2rem; display: grid; gap: 1.5rem; }
.panel { background: #fff; border-radius: 8px; padding: 1rem 1.5rem; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
.filters { display: flex; gap: 1rem; align-items: center; }
.modern-table { width: 100%; border-collapse: collapse; }
.modern-table th, .modern-table td { text-align: left; padding: .35rem .5rem; border-bottom: 1px solid #e3e8ee; }
</style>
</head>
<body data-signals="{start: '', end: '', dailyOrders: [], spendOverTime: [], topItems: [], bottomItems: [], orderStatus: [], rfmSegments: [], totalOrders: 0, totalRevenue: 0, totalSpend: 0, averageSpend: 0, avgRecency: 0, avgFrequency: 0, avgMonetary: 0, commonStatus: ''}"
      data-on-load="@get('/sse/refresh-all')">
<header>
<h1>Olist E-Commerce Dashboard</h1>
</header>
<main>
<section class="panel filters">
<label>Start <input type="date" data-bind-start/></label>
<label>End <input type="date" data-bind-end/></label>
<button data-on-click="@get('/sse/refresh-all?start='+$start+'&end='+$end)">Apply</button>
</section>

<section class="panel">
<h2>Daily Orders</h2>
<p>Total orders: <strong data-text="$totalOrders"></strong> &middot;
   Total revenue: <strong data-text="$totalRevenue.toFixed(2)"></strong></p>
<canvas id="daily-orders-chart" height="120"></canvas>
</section>

<section class="panel">
<h2>Customer Spend</h2>
<p>Total spend: <strong data-text="$totalSpend.toFixed(2)"></strong> &middot;
   Average spend: <strong data-text="$averageSpend.toFixed(2)"></strong></p>
<canvas id="spend-chart" height="120"></canvas>
</section>

<section class="panel">
<h2>Order Items</h2>
<canvas id="items-chart" height="120"></canvas>
</section>

<section class="panel">
<h2>RFM Analysis</h2>
<p>Average recency: <strong data-text="$avgRecency.toFixed(2)"></strong> days &middot;
   Average frequency: <strong data-text="$avgFrequency.toFixed(2)"></strong> orders &middot;
   Average monetary: <strong data-text="$avgMonetary.toFixed(2)"></strong></p>
<canvas id="rfm-chart" height="120"></canvas>
</section>

<section class="panel">
<h2>Customer Demographic</h2>
<p>Most common order status: <strong data-text="$commonStatus"></strong></p>
<div id="states-content"></div>
<img src="/api/geo/scatter.png" alt="Customer geolocation scatter" width="512"/>
</section>
</main>
</body>
</html>`
