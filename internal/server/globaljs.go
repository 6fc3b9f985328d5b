package server

import (
	"fmt"
	"html/template"
	"net/http"
)

// handleIntegrationJS serves the swot.js integration script
func (s *Server) handleIntegrationJS(w http.ResponseWriter, r *http.Request) {
	// Determine server URL from request
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	serverURL := fmt.Sprintf("%s://%s", scheme, r.Host)

	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Write([]byte(GenerateIntegrationScript(serverURL)))
}

// GenerateIntegrationScript returns swot.js for the given server URL. The
// browser keeps its variant in localStorage under swot_variant; the server
// only draws one when none is stored.
func GenerateIntegrationScript(serverURL string) string {
	return fmt.Sprintf(`(function(){
  var S='%s';
  var KEY='swot_variant';

  function post(path,v){
    var body=JSON.stringify({variant:v});
    if(navigator.sendBeacon){
      navigator.sendBeacon(S+path,body);
      return;
    }
    fetch(S+path,{method:'POST',body:body,keepalive:true});
  }

  function apply(v){
    document.documentElement.setAttribute('data-swot-variant',v);
    document.querySelectorAll('[data-swot-variant-'+v.toLowerCase()+']').forEach(function(el){
      el.hidden=false;
    });
    document.querySelectorAll('[data-swot-variant-'+(v==='A'?'b':'a')+']').forEach(function(el){
      el.hidden=true;
    });
  }

  function start(v){
    apply(v);
    post('/api/view',v);

    // Convert elements
    document.querySelectorAll('[data-swot-convert]').forEach(function(el){
      el.addEventListener('click',function(){
        post('/api/convert',v);
      });
    });

    window.swotlab={
      variant:v,
      convert:function(){post('/api/convert',v);}
    };
  }

  // Get or assign variant
  var v=localStorage.getItem(KEY);
  if(v==='A'||v==='B'){
    start(v);
    return;
  }
  fetch(S+'/api/variant').then(function(r){return r.json();}).then(function(d){
    localStorage.setItem(KEY,d.variant);
    start(d.variant);
  });
})();`, template.JSEscapeString(serverURL))
}
