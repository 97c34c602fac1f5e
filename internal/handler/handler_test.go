package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/incidentmap/internal/colormap"
	"github.com/jengzang/incidentmap/internal/models"
	"github.com/jengzang/incidentmap/internal/render"
	"github.com/jengzang/incidentmap/internal/repository"
	"github.com/jengzang/incidentmap/internal/service"
	"github.com/jengzang/incidentmap/internal/viewport"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func incident(key string, year int, fatalities float64, typ string) models.Record {
	return models.Record{
		Case:              key,
		Date:              models.Date{Year: year, Month: time.June, Day: 1},
		Fatalities:        fatalities,
		Injured:           1,
		TotalVictims:      fatalities + 1,
		AgeOfShooter:      40,
		Latitude:          41,
		Longitude:         -90,
		LocationCategory:  "School",
		Type:              typ,
		Race:              "White",
		Gender:            "Male",
		PriorMentalHealth: "Yes",
		WeaponsLegal:      "No",
	}
}

func newSession(t *testing.T) *service.Session {
	t.Helper()
	store, err := repository.NewRecordStore([]models.Record{
		incident("A", 2001, 3, "Mass"),
		incident("B", 2011, 9, "Spree"),
		incident("C", 2021, 4, "Mass"),
	}, nil)
	require.NoError(t, err)

	explorer, _, err := service.NewExplorer(store, service.ExplorerOptions{
		Colors: colormap.Options{Default: "#4682b4", Missing: "#bdbdbd", Low: "#ffffb2", High: "#bd0026"},
		View:   viewport.Options{MinScale: 1, MaxScale: 8, Radius: 4, HoverMultiplier: 2},
		Render: render.Options{FadeIn: 200 * time.Millisecond, FadeOut: 500 * time.Millisecond},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	loop := service.NewLoop(8)
	go loop.Run(ctx)

	return service.NewSession(explorer, loop, service.NewHub(16, nil))
}

func newRouter(t *testing.T) (*gin.Engine, *service.Session) {
	session := newSession(t)
	h := NewExplorerHandler(session, nil)
	r := gin.New()
	r.POST("/filters/quantitative", h.UpdateQuantitativeFilter)
	r.POST("/filters/nominal", h.UpdateNominalFilter)
	r.POST("/filters/reset", h.ResetFilters)
	r.POST("/color", h.SelectColorAttribute)
	r.POST("/view/transform", h.ApplyTransform)
	r.POST("/view/gesture", h.Gesture)
	r.POST("/hover", h.HoverIn)
	r.DELETE("/hover", h.HoverOut)
	r.GET("/state", h.GetState)
	r.GET("/records", h.GetVisible)
	r.GET("/records/:case", h.GetRecord)
	r.GET("/boundary", h.GetBoundary)
	r.GET("/stream", NewStreamHandler(session, nil).Stream)
	return r, session
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func decodeFrame(t *testing.T, env envelope) models.Frame {
	t.Helper()
	var f models.Frame
	require.NoError(t, json.Unmarshal(env.Data, &f))
	return f
}

func TestNominalFilterAndReset(t *testing.T) {
	r, _ := newRouter(t)

	w, env := do(t, r, http.MethodPost, "/filters/nominal", `{"attribute":"type","selected":["Mass"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	f := decodeFrame(t, env)
	assert.Equal(t, 2, f.Visible)
	assert.Equal(t, []string{"B"}, f.Diff.Remove)

	w, env = do(t, r, http.MethodPost, "/filters/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	f = decodeFrame(t, env)
	assert.Equal(t, 3, f.Visible)
	require.Len(t, f.Diff.Create, 1)
	assert.Equal(t, "B", f.Diff.Create[0].Key)
}

func TestQuantitativeFilter(t *testing.T) {
	r, _ := newRouter(t)

	w, env := do(t, r, http.MethodPost, "/filters/quantitative", `{"attribute":"date","low":2005,"high":2021}`)
	require.Equal(t, http.StatusOK, w.Code)
	f := decodeFrame(t, env)
	assert.Equal(t, 2, f.Visible)
	assert.Equal(t, []string{"A"}, f.Diff.Remove)
}

func TestBadRequests(t *testing.T) {
	r, _ := newRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"missing bounds", http.MethodPost, "/filters/quantitative", `{"attribute":"date"}`, http.StatusBadRequest},
		{"unknown attribute", http.MethodPost, "/filters/quantitative", `{"attribute":"height","low":1,"high":2}`, http.StatusBadRequest},
		{"kind mismatch", http.MethodPost, "/filters/nominal", `{"attribute":"fatalities","selected":["1"]}`, http.StatusBadRequest},
		{"unknown color", http.MethodPost, "/color", `{"attribute":"mood"}`, http.StatusBadRequest},
		{"bad gesture", http.MethodPost, "/view/gesture", `{"phase":"spin"}`, http.StatusBadRequest},
		{"unknown hover key", http.MethodPost, "/hover", `{"key":"Z"}`, http.StatusNotFound},
		{"unknown record", http.MethodGet, "/records/Z", "", http.StatusNotFound},
		{"no boundary", http.MethodGet, "/boundary", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.status, env.Code)
		})
	}
}

func TestColorTransformAndHover(t *testing.T) {
	r, _ := newRouter(t)

	w, env := do(t, r, http.MethodPost, "/color", `{"attribute":"fatalities"}`)
	require.Equal(t, http.StatusOK, w.Code)
	f := decodeFrame(t, env)
	assert.Equal(t, "fatalities", f.ColorBy)
	assert.Len(t, f.Diff.Update, 3)
	assert.Empty(t, f.Diff.Create)

	w, env = do(t, r, http.MethodPost, "/view/transform", `{"x":0,"y":0,"k":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	f = decodeFrame(t, env)
	assert.Equal(t, 2.0, f.Diff.Update[0].Radius)

	w, env = do(t, r, http.MethodPost, "/hover", `{"key":"A","x":1,"y":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	f = decodeFrame(t, env)
	require.NotNil(t, f.Tooltip)
	assert.Equal(t, 4.0, f.Diff.Update[0].Radius, "hover radius 4*2 at zoom 2")

	w, _ = do(t, r, http.MethodDelete, "/hover", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHoverWithoutKeyHitTests(t *testing.T) {
	r, _ := newRouter(t)

	w, env := do(t, r, http.MethodPost, "/hover", `{"x":-500,"y":-500}`)
	require.Equal(t, http.StatusOK, w.Code)
	f := decodeFrame(t, env)
	assert.Nil(t, f.Tooltip, "nothing under the pointer")
	assert.Empty(t, f.Diff.Update)
}

func TestGetState(t *testing.T) {
	r, _ := newRouter(t)

	w, env := do(t, r, http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	var st service.State
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Len(t, st.Filters, len(models.Filterable))
	assert.Equal(t, 3, st.Summary.Count)
}

func TestGetRecord(t *testing.T) {
	r, _ := newRouter(t)

	w, env := do(t, r, http.MethodGet, "/records/A", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"case":"A"`)
}

func TestStreamSendsSnapshotThenFrames(t *testing.T) {
	r, _ := newRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg StreamMessage
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, service.TriggerSnapshot, msg.Action)
	require.NotNil(t, msg.Frame)
	assert.Len(t, msg.Frame.Diff.Create, 3)
	snapshotGen := msg.Frame.Generation

	require.NoError(t, ws.WriteJSON(StreamEvent{Action: "nominal", Attribute: "type", Selected: []string{"Spree"}}))
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, "frame", msg.Action)
	require.NotNil(t, msg.Frame)
	assert.Greater(t, msg.Frame.Generation, snapshotGen)
	assert.Equal(t, []string{"A", "C"}, msg.Frame.Diff.Remove)

	require.NoError(t, ws.WriteJSON(StreamEvent{Action: "dance"}))
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Action)
	assert.Contains(t, msg.Error, "unknown action")
}
