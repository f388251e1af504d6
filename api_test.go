package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"novamcp/nova"
)

func testAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return newAPI(defaultConfig(), zerolog.Nop())
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func patchHex(t *testing.T, mutate func([]byte)) string {
	t.Helper()
	b := newTestPatch(t, "Lead Tone", 40).Bytes()
	if mutate != nil {
		mutate(b)
	}
	return hex.EncodeToString(b)
}

func TestHealth(t *testing.T) {
	w := doJSON(t, testAPI(t), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["service"] != "novamcp" {
		t.Errorf("body = %v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := testAPI(t)
	doJSON(t, r, http.MethodPost, "/v1/frames/describe", frameRequest{Hex: patchHex(t, nil)})

	w := doJSON(t, r, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("novamcp_frames_parsed_total")) {
		t.Error("frame counter missing from /metrics")
	}
}

func TestDescribeEndpoint(t *testing.T) {
	r := testAPI(t)

	w := doJSON(t, r, http.MethodPost, "/v1/frames/describe", frameRequest{Hex: patchHex(t, nil)})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	var rep frameReport
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Name != "Lead Tone" || !rep.Valid {
		t.Errorf("report = %+v", rep)
	}

	for _, body := range []any{
		map[string]string{},
		frameRequest{Hex: "zz"},
		frameRequest{Hex: "F000"},
	} {
		if w := doJSON(t, r, http.MethodPost, "/v1/frames/describe", body); w.Code != http.StatusBadRequest {
			t.Errorf("describe %+v: status %d", body, w.Code)
		}
	}
}

func TestValidateEndpoint(t *testing.T) {
	r := testAPI(t)

	if w := doJSON(t, r, http.MethodPost, "/v1/frames/validate", frameRequest{Hex: patchHex(t, nil)}); w.Code != http.StatusOK {
		t.Fatalf("valid frame: status %d", w.Code)
	}

	bad := patchHex(t, func(b []byte) { b[518] ^= 0x01 })
	w := doJSON(t, r, http.MethodPost, "/v1/frames/validate", frameRequest{Hex: bad})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad checksum: status %d", w.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["reason"] != "checksum" {
		t.Errorf("reason = %v", body["reason"])
	}
}

func TestSetEndpoint(t *testing.T) {
	r := testAPI(t)
	slot := 2

	w := doJSON(t, r, http.MethodPost, "/v1/frames/set", setRequest{Hex: patchHex(t, nil), Slot: &slot, Value: "Parallel"})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	var rep editReport
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Slot.Display != "Parallel" {
		t.Errorf("slot = %+v", rep.Slot)
	}
	b, _ := hex.DecodeString(rep.Hex)
	p, err := nova.ParsePatch(b)
	if err != nil || p.Validate() != nil {
		t.Fatalf("edited frame does not validate: %v", err)
	}

	bad := patchHex(t, func(b []byte) { b[518] ^= 0x01 })
	if w := doJSON(t, r, http.MethodPost, "/v1/frames/set", setRequest{Hex: bad, Slot: &slot, Value: "Parallel"}); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid frame: status %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/frames/set", setRequest{Hex: patchHex(t, nil), Slot: &slot, Value: "Diagonal"}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown value: status %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/v1/frames/set", map[string]string{"hex": patchHex(t, nil), "value": "1"}); w.Code != http.StatusBadRequest {
		t.Errorf("missing slot: status %d", w.Code)
	}
}

func TestCatalogEndpoint(t *testing.T) {
	r := testAPI(t)

	w := doJSON(t, r, http.MethodGet, "/v1/catalog/reverb%20type", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var rep typeReport
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Type != nova.TypeReverb || len(rep.Values) == 0 {
		t.Errorf("report = %+v", rep)
	}

	if w := doJSON(t, r, http.MethodGet, "/v1/catalog/unknown", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown type: status %d", w.Code)
	}
}

func TestLayoutEndpoint(t *testing.T) {
	r := testAPI(t)

	w := doJSON(t, r, http.MethodGet, "/v1/layout/compressor/2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var lay nova.Layout
	if err := json.Unmarshal(w.Body.Bytes(), &lay); err != nil {
		t.Fatal(err)
	}
	want, _ := nova.Dispatch(nova.BlockCompressor, 2)
	if lay.Discriminant != 2 || len(lay.Rows) != len(want.Rows) {
		t.Errorf("layout = %+v", lay)
	}

	if w := doJSON(t, r, http.MethodGet, "/v1/layout/boost", nil); w.Code != http.StatusOK {
		t.Errorf("fixed block: status %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/v1/layout/wah/0", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown block: status %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/v1/layout/delay/fast", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad mode: status %d", w.Code)
	}
}

func TestFrameEditEndpoints(t *testing.T) {
	r := testAPI(t)
	sysHex := hex.EncodeToString(nova.NewSystemDump(0).Bytes())

	tests := []struct {
		path string
		body any
		want int
	}{
		{"/v1/presets/rename", renameRequest{Hex: patchHex(t, nil), Name: "Solo"}, http.StatusOK},
		{"/v1/presets/rename", renameRequest{Hex: sysHex, Name: "Solo"}, http.StatusBadRequest},
		{"/v1/presets/rename", map[string]string{"hex": patchHex(t, nil)}, http.StatusBadRequest},
		{"/v1/presets/copy", copyRequest{Hex: patchHex(t, nil), Preset: "19-3"}, http.StatusOK},
		{"/v1/presets/copy", copyRequest{Hex: patchHex(t, nil), Preset: "F0-1"}, http.StatusBadRequest},
		{"/v1/presets/copy", copyRequest{Hex: patchHex(t, func(b []byte) { b[518] ^= 0x01 }), Preset: "19-3"}, http.StatusUnprocessableEntity},
		{"/v1/system/cc", ccRequest{Hex: sysHex, Function: "reverb", CC: "7"}, http.StatusOK},
		{"/v1/system/cc", ccRequest{Hex: sysHex, Function: "reverb", CC: "200"}, http.StatusBadRequest},
		{"/v1/system/program-map", programMapRequest{Hex: sysHex, Direction: "in", From: "1", To: "none"}, http.StatusOK},
		{"/v1/system/program-map", programMapRequest{Hex: sysHex, Direction: "up", From: "1", To: "none"}, http.StatusBadRequest},
		{"/v1/system/settings", settingsRequest{Hex: sysHex, Settings: "channel=3 clock=on"}, http.StatusOK},
		{"/v1/system/settings", settingsRequest{Hex: sysHex, Settings: "channel=99"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if w := doJSON(t, r, http.MethodPost, tt.path, tt.body); w.Code != tt.want {
			t.Errorf("%s %+v: status %d, want %d: %s", tt.path, tt.body, w.Code, tt.want, w.Body)
		}
	}

	w := doJSON(t, r, http.MethodPost, "/v1/presets/copy", copyRequest{Hex: patchHex(t, nil), Preset: "19-3"})
	var rep struct {
		Name   string `json:"name"`
		Preset string `json:"preset"`
		Valid  bool   `json:"valid"`
		Hex    string `json:"hex"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Name != "Lead Tone" || rep.Preset != "19-3" || !rep.Valid {
		t.Errorf("copy report = %+v", rep)
	}
	b, _ := hex.DecodeString(rep.Hex)
	if p, err := nova.ParsePatch(b); err != nil || p.PresetCode() != nova.LastUserPreset {
		t.Errorf("copied frame: %v", err)
	}
}
