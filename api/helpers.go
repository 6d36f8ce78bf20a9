package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/artmural/mural/log"
	"github.com/artmural/mural/types"
)

// httpWriteJSON helper function allows to write a JSON response.
func httpWriteJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	jdata, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	n, err := w.Write(jdata)
	if err != nil {
		log.Warnw("failed to write http response", "error", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
	log.Debugw("api response", "bytes", n, "data", strings.ReplaceAll(string(jdata), "\"", ""))
}

// httpWriteOK helper function allows to write an OK response.
func httpWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// urlRoundID parses the round id URL parameter.
func urlRoundID(r *http.Request) (uint64, bool) {
	roundID, err := strconv.ParseUint(chi.URLParam(r, RoundURLParam), 10, 64)
	return roundID, err == nil
}

// urlIdentity parses a 32-byte hex identity URL parameter.
func urlIdentity(r *http.Request, param string) (types.Identity, bool) {
	var hb types.HexBytes
	if err := hb.SetString(chi.URLParam(r, param)); err != nil {
		return types.Identity{}, false
	}
	id, err := types.IdentityFromBytes(hb)
	return id, err == nil
}

// fixedBytes copies a hex field into a fixed-size array, false on length
// mismatch.
func fixedBytes32(hb types.HexBytes) ([32]byte, bool) {
	var out [32]byte
	if len(hb) != 32 {
		return out, false
	}
	copy(out[:], hb)
	return out, true
}

func fixedBytes16(hb types.HexBytes) ([16]byte, bool) {
	var out [16]byte
	if len(hb) != 16 {
		return out, false
	}
	copy(out[:], hb)
	return out, true
}
