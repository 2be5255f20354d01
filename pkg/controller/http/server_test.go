package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/gt"
	controller "github.com/secmon-lab/phenodash/pkg/controller/http"
	"github.com/secmon-lab/phenodash/pkg/domain/model"
	"github.com/secmon-lab/phenodash/pkg/repository"
	"github.com/secmon-lab/phenodash/pkg/service/dataset"
	"github.com/secmon-lab/phenodash/pkg/service/metrics"
	"github.com/secmon-lab/phenodash/pkg/usecase"
	"github.com/xuri/excelize/v2"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	gt.NoError(t, err).Required()
	return d
}

type testServer struct {
	server  *controller.Server
	hub     *controller.LiveHub
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T, records ...model.WeeklyRecord) *testServer {
	t.Helper()
	ctx := context.Background()

	m := metrics.New()
	hub := controller.NewLiveHub(m)
	uc := usecase.NewDashboard(dataset.NewCache(repository.NewMemory(records...), dataset.WithMetrics(m)), nil, m)

	server, err := controller.NewServer(ctx, ":0", uc,
		controller.WithMetrics(m),
		controller.WithLiveHub(hub),
	)
	gt.NoError(t, err).Required()
	return &testServer{server: server, hub: hub, metrics: m}
}

func (s *testServer) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func sampleRecords(t *testing.T) []model.WeeklyRecord {
	return []model.WeeklyRecord{
		{Week: day(t, "2024-01-01"), MRSA: 5, VRSA: 1, Wild: 10, Others: 0, Total: 16},
		{Week: day(t, "2024-01-08"), MRSA: 3, VRSA: 0, Wild: 8, Others: 1, Total: 12},
		{Week: day(t, "2024-01-15"), MRSA: 4, VRSA: 2, Wild: 9, Others: 2, Total: 17},
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, sampleRecords(t)...)
	rec := s.get("/health")
	gt.Equal(t, rec.Code, http.StatusOK)

	var body map[string]string
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
	gt.Equal(t, body["status"], "healthy")
	gt.Equal(t, body["service"], "phenodash")
}

func TestDashboardAPI(t *testing.T) {
	s := newTestServer(t, sampleRecords(t)...)

	t.Run("full span by default", func(t *testing.T) {
		rec := s.get("/api/dashboard")
		gt.Equal(t, rec.Code, http.StatusOK)

		var view model.View
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view)).Required()
		gt.Equal(t, len(view.Rows), 3)
		gt.Equal(t, view.Summary.Total, int64(45))
		gt.Equal(t, len(view.Series), 3)
	})

	t.Run("filtered range", func(t *testing.T) {
		rec := s.get("/api/dashboard?start=2024-01-08&end=2024-01-15&phenotype=MRSA")
		gt.Equal(t, rec.Code, http.StatusOK)

		var view model.View
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view)).Required()
		gt.Equal(t, len(view.Rows), 2)
		gt.Equal(t, view.Summary.MRSA, int64(7))
		gt.Equal(t, len(view.Series), 1)
		gt.Equal(t, len(view.Series[0].Points), 2)
	})

	t.Run("start after end renders an empty view", func(t *testing.T) {
		rec := s.get("/api/dashboard?start=2024-01-15&end=2024-01-01")
		gt.Equal(t, rec.Code, http.StatusOK)

		var view model.View
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view)).Required()
		gt.Equal(t, len(view.Rows), 0)
		gt.Equal(t, view.Summary.Total, int64(0))
	})

	t.Run("malformed date is a bad request", func(t *testing.T) {
		rec := s.get("/api/dashboard?start=yesterday")
		gt.Equal(t, rec.Code, http.StatusBadRequest)
		gt.S(t, rec.Body.String()).Contains(`"error"`)
	})

	t.Run("unknown phenotype is a bad request", func(t *testing.T) {
		rec := s.get("/api/dashboard?phenotype=MSSA")
		gt.Equal(t, rec.Code, http.StatusBadRequest)
	})
}

func TestDashboardPage(t *testing.T) {
	s := newTestServer(t, sampleRecords(t)...)

	t.Run("renders charts and table", func(t *testing.T) {
		rec := s.get("/")
		gt.Equal(t, rec.Code, http.StatusOK)
		gt.S(t, rec.Header().Get("Content-Type")).Contains("text/html")

		body := rec.Body.String()
		gt.S(t, body).Contains(model.DefaultDashboardConfig().Title)
		gt.S(t, body).Contains("<svg")
		gt.S(t, body).Contains("<polygon")
		gt.S(t, body).Contains("2024-01-15")
		gt.S(t, body).Contains("/static/live.js")
		gt.S(t, body).Contains("/api/records.csv?start=2024-01-01")
	})

	t.Run("no selected phenotype still renders", func(t *testing.T) {
		rec := s.get("/?phenotype=")
		gt.Equal(t, rec.Code, http.StatusOK)
		gt.False(t, strings.Contains(rec.Body.String(), "<polyline"))
	})

	t.Run("empty range shows no rows", func(t *testing.T) {
		rec := s.get("/?start=2025-01-01&end=2025-02-01")
		gt.Equal(t, rec.Code, http.StatusOK)
		gt.S(t, rec.Body.String()).Contains("No rows in the selected range.")
	})
}

func TestDataLoadFailure(t *testing.T) {
	s := newTestServer(t)

	t.Run("page shows the load error", func(t *testing.T) {
		rec := s.get("/")
		gt.Equal(t, rec.Code, http.StatusInternalServerError)
		gt.S(t, rec.Body.String()).Contains("The dataset could not be loaded.")
	})

	t.Run("api returns the load error", func(t *testing.T) {
		rec := s.get("/api/dashboard")
		gt.Equal(t, rec.Code, http.StatusInternalServerError)

		var body map[string]string
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
		gt.NotEqual(t, body["error"], "")
	})
}

func TestExport(t *testing.T) {
	s := newTestServer(t, sampleRecords(t)...)

	t.Run("csv", func(t *testing.T) {
		rec := s.get("/api/records.csv?start=2024-01-08")
		gt.Equal(t, rec.Code, http.StatusOK)
		gt.S(t, rec.Header().Get("Content-Type")).Contains("text/csv")
		gt.S(t, rec.Header().Get("Content-Disposition")).Contains("weekly_staph_phenotypes_2024-01-08_2024-01-15.csv")
		gt.Equal(t, rec.Body.String(), "Week,MRSA,VRSA,Wild,others,Total\n"+
			"2024-01-08,3,0,8,1,12\n"+
			"2024-01-15,4,2,9,2,17\n")
	})

	t.Run("xlsx", func(t *testing.T) {
		rec := s.get("/api/records.xlsx")
		gt.Equal(t, rec.Code, http.StatusOK)

		f, err := excelize.OpenReader(rec.Body)
		gt.NoError(t, err).Required()
		defer f.Close()

		rows, err := f.GetRows("Data")
		gt.NoError(t, err).Required()
		gt.Equal(t, len(rows), 4)
		gt.Equal(t, rows[1][0], "2024-01-01")
	})
}

func TestMetricsAndStatic(t *testing.T) {
	s := newTestServer(t, sampleRecords(t)...)
	gt.Equal(t, s.get("/api/dashboard").Code, http.StatusOK)

	rec := s.get("/metrics")
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.S(t, rec.Body.String()).Contains("phenodash_renders_total")
	gt.S(t, rec.Body.String()).Contains("phenodash_dataset_loads_total")

	gt.Equal(t, s.get("/static/style.css").Code, http.StatusOK)
}

func TestLiveReload(t *testing.T) {
	s := newTestServer(t, sampleRecords(t)...)
	srv := httptest.NewServer(s.server.Handler)
	defer srv.Close()
	defer s.hub.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	gt.NoError(t, err).Required()
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	gt.Equal(t, s.hub.Clients(), 1)

	s.hub.NotifyDatasetChanged()

	gt.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second))).Required()
	var ev controller.LiveEvent
	gt.NoError(t, conn.ReadJSON(&ev)).Required()
	gt.Equal(t, ev.Type, controller.LiveEventDatasetChanged)
}
