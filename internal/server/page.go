package server

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// page is the preview document. The chart component is the first frame;
// later frames arrive over /ws and replace it.
func page(title string, chart templ.Component, problem string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`+
			templ.EscapeString(title)+`</title><style>`+pageStyle+`</style></head><body><main><h1>`+
			templ.EscapeString(title)+`</h1><pre id="problem"`); err != nil {
			return err
		}
		if problem == "" {
			if _, err := io.WriteString(w, ` hidden>`); err != nil {
				return err
			}
		} else if _, err := io.WriteString(w, `>`+templ.EscapeString(problem)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</pre><div id="chart">`); err != nil {
			return err
		}
		if err := chart.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div></main><script>`+pageScript+`</script></body></html>`)
		return err
	})
}

const pageStyle = `body{margin:0;font-family:system-ui,sans-serif;background:#fafafa;color:#222}
main{max-width:1100px;margin:2rem auto;padding:0 1rem}
h1{font-size:1.1rem;font-weight:600}
#chart{background:#fff;border:1px solid #e5e5e5;display:inline-block}
#chart [data-key]{cursor:pointer}
#problem{background:#fff1f0;border:1px solid #ffa39e;padding:.75rem;white-space:pre-wrap}`

// pageScript keeps the chart in sync with the server and reports pointer
// events on marks by their data-key.
const pageScript = `(function(){
var chart=document.getElementById("chart"),problem=document.getElementById("problem"),ws,hovered=null;
function send(kind,key){if(ws&&ws.readyState===1){ws.send(JSON.stringify({type:"event",event:{kind:kind,key:key}}));}}
function keyOf(t){var el=t&&t.closest?t.closest("[data-key]"):null;return el?el.getAttribute("data-key"):null;}
chart.addEventListener("click",function(e){var k=keyOf(e.target);if(k){send("click",k);}});
chart.addEventListener("mouseover",function(e){var k=keyOf(e.target);
if(k&&k!==hovered){hovered=k;send("hover",k);}else if(!k&&hovered){hovered=null;send("leave","");}});
chart.addEventListener("mouseleave",function(){if(hovered){hovered=null;send("leave","");}});
function connect(){
var proto=location.protocol==="https:"?"wss:":"ws:";
ws=new WebSocket(proto+"//"+location.host+"/ws");
ws.onmessage=function(m){var msg=JSON.parse(m.data);
if(msg.type==="frame"){chart.innerHTML=msg.svg;problem.hidden=true;}
else if(msg.type==="error"){problem.textContent=msg.error;problem.hidden=false;}};
ws.onclose=function(){setTimeout(connect,1000);};}
connect();})();`
