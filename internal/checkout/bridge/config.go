package bridge

import (
	"bytes"
	"encoding/json"
	"html/template"
)

// Config is the hosted-checkout configuration injected into the gateway's
// client script, mirroring the options object the Razorpay widget accepts.
type Config struct {
	Key         string  `json:"key"`
	AmountPaise int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
	Theme       Theme   `json:"theme"`
}

type Prefill struct {
	Email   string `json:"email"`
	Contact string `json:"contact"`
	Name    string `json:"name"`
}

type Theme struct {
	Color string `json:"color"`
}

// pageTemplate wraps checkout.js the way the mobile WebView did, except the
// one-shot terminal message travels over a WebSocket back to this service
// instead of a postMessage bridge.
var pageTemplate = template.Must(template.New("checkout").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <script src="https://checkout.razorpay.com/v1/checkout.js"></script>
</head>
<body>
  <script>
    var ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + {{.WSPath}});
    var sent = false;
    function report(msg) {
      if (sent) return;
      sent = true;
      ws.send(JSON.stringify(msg));
      ws.close();
    }
    ws.onopen = function () {
      var options = {{.Options}};
      options.handler = function (response) {
        report({
          status: 'success',
          payment_id: response.razorpay_payment_id,
          order_id: response.razorpay_order_id,
          signature: response.razorpay_signature
        });
      };
      options.modal = {
        ondismiss: function () {
          report({status: 'dismissed'});
        }
      };
      var rzp = new Razorpay(options);
      rzp.on('payment.failed', function (response) {
        report({status: 'failed', error: response.error});
      });
      rzp.open();
    };
  </script>
</body>
</html>
`))

// Page renders the checkout HTML for a session. wsPath is the session's
// outcome WebSocket endpoint.
func (c Config) Page(wsPath string) ([]byte, error) {
	options, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, struct {
		WSPath  string
		Options template.JS
	}{
		WSPath:  wsPath,
		Options: template.JS(options),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
