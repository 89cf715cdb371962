package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/forcepad/internal/logic"
	"github.com/sweeney/forcepad/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"phase": func(p logic.Phase) string {
		if p == "" {
			return "UNKNOWN"
		}
		return string(p)
	},
	"clock": func(t time.Time) string {
		return t.UTC().Format("15:04:05.000")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Forcepad</title>
<style>
body { font-family: monospace; max-width: 640px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.dropped { color: #b00; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Forcepad<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Channels</h2>
<table>
<tr><th></th><th>Left</th><th>Right</th></tr>
<tr><th>Raw</th><td id="left-raw">{{.Left.Raw}}</td><td id="right-raw">{{.Right.Raw}}</td></tr>
<tr><th>Pressed</th><td id="left-pressed" class="{{if .Left.Pressed}}on{{else}}off{{end}}">{{if .Left.Pressed}}yes{{else}}no{{end}}</td><td id="right-pressed" class="{{if .Right.Pressed}}on{{else}}off{{end}}">{{if .Right.Pressed}}yes{{else}}no{{end}}</td></tr>
<tr><th>Baseline</th><td id="left-baseline">{{printf "%.1f" .Left.Baseline}}</td><td id="right-baseline">{{printf "%.1f" .Right.Baseline}}</td></tr>
<tr><th>Threshold</th><td id="left-threshold">{{printf "%.1f" .Left.Threshold}}</td><td id="right-threshold">{{printf "%.1f" .Right.Threshold}}</td></tr>
<tr><th>Phase</th><td id="left-phase">{{phase .Left.Phase}}</td><td id="right-phase">{{phase .Right.Phase}}</td></tr>
<tr><th>Ready</th><td colspan="2" id="ready">{{if .Calibrated}}yes{{else}}calibrating{{end}}</td></tr>
</table>

<h2>Keyboard</h2>
<table>
<tr><th>Link</th><td class="{{if .KeyboardConnected}}connected{{else}}disconnected{{end}}">{{if .KeyboardConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Dropped</th><td>{{.Dropped}}</td></tr>
</table>

<h2>Gesture Counts</h2>
<table>
<tr><th>Short press</th><td>{{.Counts.ShortPress}}</td></tr>
<tr><th>Long press</th><td>{{.Counts.LongPress}}</td></tr>
<tr><th>Double press</th><td>{{.Counts.DoublePress}}</td></tr>
<tr><th>Both held</th><td>{{.Counts.SimultaneousLongPress}}</td></tr>
</table>

<h2>Recent</h2>
<table>
{{range .Recent}}<tr{{if not .Sent}} class="dropped"{{end}}><td>{{clock .Timestamp}}</td><td>{{.Side}}</td><td>{{.Kind}}</td><td>{{.Command}}</td></tr>
{{else}}<tr><td>none yet</td></tr>
{{end}}</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Serial</th><td>{{.Config.SerialDevice}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>LED</th><td>{{if lt .Config.LEDLine 0}}disabled{{else}}line {{.Config.LEDLine}}{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function setChannel(side, ch) {
    document.getElementById(side + "-raw").textContent = ch.raw;
    var p = document.getElementById(side + "-pressed");
    p.textContent = ch.pressed ? "yes" : "no";
    p.className = ch.pressed ? "on" : "off";
    document.getElementById(side + "-baseline").textContent = ch.baseline.toFixed(1);
    document.getElementById(side + "-threshold").textContent = ch.threshold.toFixed(1);
    document.getElementById(side + "-phase").textContent = ch.phase;
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");

    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "offline");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(e) {
      try {
        var msg = JSON.parse(e.data);
        if (msg.status) {
          setChannel("left", msg.status.left);
          setChannel("right", msg.status.right);
          document.getElementById("ready").textContent = msg.status.ready ? "yes" : "calibrating";
        }
      } catch (err) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
