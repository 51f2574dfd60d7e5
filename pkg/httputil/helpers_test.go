package httputil

import (
	"encoding/json"
	"net/http"
)

func jsonDecode(r *http.Request, dest interface{}) error {
	return json.NewDecoder(r.Body).Decode(dest)
}
