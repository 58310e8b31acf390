package server

// indexHTML is the dashboard page. Chart images are requested at the width
// of their container; pointer moves over the bubble chart are hit-tested
// server side against the last render.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Pump log</title>
<style>
  body { font-family: 'Segoe UI', sans-serif; margin: 0 auto; max-width: 960px; padding: 16px; color: #2d3436; }
  h1 { color: #b83b7c; margin-bottom: 4px; }
  .date { color: #7f8c8d; margin-bottom: 16px; }
  .notice { background: #fff3cd; padding: 6px 10px; border-radius: 4px; font-size: 13px; }
  table { border-collapse: collapse; width: 100%; margin-bottom: 8px; }
  th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #eee; }
  .total { font-weight: bold; color: #b83b7c; margin-bottom: 24px; }
  .empty { color: #7f8c8d; font-style: italic; }
  .chart { width: 100%; margin-bottom: 24px; }
  .chart img { display: block; width: 100%; }
  .updated { color: #7f8c8d; font-size: 12px; }
  #tooltip {
    position: fixed; display: none; pointer-events: none; z-index: 9999;
    background-color: rgba(0, 0, 0, 0.8); color: white; padding: 8px 12px;
    border-radius: 4px; font-size: 12px; white-space: pre;
    box-shadow: 0 2px 5px rgba(0,0,0,0.3);
  }
</style>
</head>
<body>
<h1>Pump log</h1>
<div class="date">{{.LongDate}}</div>
{{if .Sample}}<p class="notice">The feed could not be read. Showing generated sample data.</p>{{end}}

<h2>Today</h2>
{{if .Empty}}
<p class="empty">No data recorded today</p>
{{else}}
<table>
  <thead><tr><th>Time</th><th>Amount</th><th>Pump</th></tr></thead>
  <tbody>
  {{range .Rows}}<tr><td>{{.Time}}</td><td>{{.Amount}}</td><td>{{.Flag}}</td></tr>
  {{end}}
  </tbody>
</table>
{{end}}
<div class="total">{{.Total}}</div>

<h2>Last 7 days</h2>
<div class="chart"><img id="weekly" data-chart="weekly" data-height="{{.Height}}" width="{{.Width}}" height="{{.Height}}" alt="Daily totals"></div>

<h2>Time of day</h2>
<div class="chart"><img id="bubbles" data-chart="bubbles" data-height="{{.Height}}" width="{{.Width}}" height="{{.Height}}" alt="Pumping sessions by time of day"></div>
<div id="tooltip"></div>

<p class="updated">Updated {{.Updated}}</p>

<script>
(function () {
  var charts = document.querySelectorAll('img[data-chart]');
  var bubbles = document.getElementById('bubbles');
  var tooltip = document.getElementById('tooltip');

  function load() {
    charts.forEach(function (img) {
      var w = Math.max(200, Math.round(img.parentElement.clientWidth));
      img.src = '/charts/' + img.dataset.chart + '.svg?w=' + w + '&h=' + img.dataset.height + '&t=' + Date.now();
    });
  }

  function hide() { tooltip.style.display = 'none'; }

  var inside = false;
  var seq = 0;
  var pending = 0;
  var last = null;

  function send() {
    pending = 0;
    if (!inside || !last) { return; }
    var sx = bubbles.naturalWidth / bubbles.clientWidth || 1;
    var sy = bubbles.naturalHeight / bubbles.clientHeight || 1;
    var q = 'x=' + last.offsetX * sx + '&y=' + last.offsetY * sy +
      '&px=' + last.clientX + '&py=' + last.clientY;
    var id = ++seq;
    fetch('/api/bubbles/hit?' + q)
      .then(function (res) { return res.json(); })
      .then(function (hit) {
        if (!inside || id !== seq) { return; }
        if (!hit.hit) { hide(); return; }
        tooltip.textContent = hit.text;
        tooltip.style.left = hit.left + 'px';
        tooltip.style.top = hit.top + 'px';
        tooltip.style.display = 'block';
      })
      .catch(function () {
        if (inside && id === seq) { hide(); }
      });
  }

  bubbles.addEventListener('mousemove', function (event) {
    inside = true;
    last = event;
    if (!pending) { pending = window.requestAnimationFrame(send); }
  });
  bubbles.addEventListener('mouseout', function () {
    inside = false;
    seq++;
    if (pending) {
      window.cancelAnimationFrame(pending);
      pending = 0;
    }
    hide();
  });

  var resizeTimer;
  window.addEventListener('resize', function () {
    clearTimeout(resizeTimer);
    resizeTimer = setTimeout(load, 200);
  });
  load();
})();
</script>
</body>
</html>
`
