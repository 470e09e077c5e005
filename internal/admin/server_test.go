package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shopwarden/internal/domain"
	"shopwarden/internal/service"

	"github.com/shopspring/decimal"
)

type fakeStatus struct{ status string }

func (f *fakeStatus) Status() string { return f.status }

type fakeAuditStore struct {
	shops       []domain.ShopInfo
	items       []domain.ItemInfo
	corrections []domain.CorrectionRecord
	sweeps      []domain.SweepRecord
}

func (f *fakeAuditStore) GetAllShops() ([]domain.ShopInfo, error) { return f.shops, nil }
func (f *fakeAuditStore) GetAllItems() ([]domain.ItemInfo, error) { return f.items, nil }
func (f *fakeAuditStore) RecentCorrections(limit int) ([]domain.CorrectionRecord, error) {
	return f.corrections, nil
}
func (f *fakeAuditStore) RecentSweeps(limit int) ([]domain.SweepRecord, error) {
	return f.sweeps, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *service.LimitService) {
	t.Helper()

	limits := service.NewLimitService(nil)
	limits.Reconcile([]string{"wood", "coal"})
	limits.RebuildCache()

	store := &fakeAuditStore{
		shops: []domain.ShopInfo{{ControllerID: "ctl-1", Name: "General"}},
	}
	srv := NewServer(limits, &fakeStatus{status: "Ready."}, store, nil)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, limits
}

func TestServer_Status(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status failed: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body["status"] != "Ready." {
		t.Errorf("status = %q, want Ready.", body["status"])
	}
}

func TestServer_LimitsCRUD(t *testing.T) {
	ts, limits := newTestServer(t)
	client := ts.Client()

	// Set a floor and a ceiling in one request.
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/limits/wood",
		bytes.NewBufferString(`{"floor": "10", "ceiling": "100"}`))
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("PUT /api/limits/wood failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body limitsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	found := false
	for _, l := range body.SellFloors {
		if l.ItemID == "wood" && l.Price.Equal(decimal.NewFromInt(10)) {
			found = true
		}
	}
	if !found {
		t.Errorf("floor not reflected in response: %+v", body.SellFloors)
	}

	// The edit went through the service and rebuilt the cache.
	if !limits.Tables().SellFloors["wood"].Equal(decimal.NewFromInt(10)) {
		t.Error("cache not rebuilt after API edit")
	}

	// Unknown item is a 404.
	req, _ = http.NewRequest(http.MethodPut, ts.URL+"/api/limits/unobtanium",
		bytes.NewBufferString(`{"floor": "1"}`))
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("PUT unknown item failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown item status = %d, want 404", resp.StatusCode)
	}

	// Clear resets to the unbounded defaults.
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/limits/wood", nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE /api/limits/wood failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("clear status = %d, want 200", resp.StatusCode)
	}
	if !limits.Tables().SellFloors["wood"].Equal(domain.UnboundedFloor) {
		t.Error("clear did not reset the floor")
	}
}

func TestServer_GetItemLimits(t *testing.T) {
	ts, limits := newTestServer(t)

	if err := limits.SetFloor("wood", decimal.NewFromInt(10)); err != nil {
		t.Fatalf("SetFloor failed: %v", err)
	}

	resp, err := http.Get(ts.URL + "/api/limits/wood")
	if err != nil {
		t.Fatalf("GET /api/limits/wood failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body itemLimitsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !body.Floor.Equal(decimal.NewFromInt(10)) {
		t.Errorf("floor = %v, want 10", body.Floor)
	}
	if !body.Ceiling.Equal(domain.UnboundedCeiling) {
		t.Errorf("ceiling = %v, want unbounded", body.Ceiling)
	}

	// An item outside the reconciled catalog is a 404.
	resp, err = http.Get(ts.URL + "/api/limits/unobtanium")
	if err != nil {
		t.Fatalf("GET unknown item failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown item status = %d, want 404", resp.StatusCode)
	}
}

func TestServer_SetInterval(t *testing.T) {
	ts, limits := newTestServer(t)
	client := ts.Client()

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/interval",
		strings.NewReader(`{"seconds": 45}`))
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("PUT /api/interval failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if limits.TickInterval().Seconds() != 45 {
		t.Errorf("interval = %v, want 45s", limits.TickInterval())
	}

	req, _ = http.NewRequest(http.MethodPut, ts.URL+"/api/interval",
		strings.NewReader(`{"seconds": 0}`))
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("PUT zero interval failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("zero interval status = %d, want 400", resp.StatusCode)
	}
}

func TestServer_Shops(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/shops")
	if err != nil {
		t.Fatalf("GET /api/shops failed: %v", err)
	}
	defer resp.Body.Close()

	var shops []domain.ShopInfo
	if err := json.NewDecoder(resp.Body).Decode(&shops); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(shops) != 1 || shops[0].ControllerID != "ctl-1" {
		t.Errorf("unexpected shops: %+v", shops)
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(buf.String(), "shopwarden_sweep_cycles_total") {
		t.Error("expected shopwarden metrics in exposition")
	}
}

func TestServer_Heartbeat(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/ping")
	if err != nil {
		t.Fatalf("GET /ping failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("ping status = %d, want 200", resp.StatusCode)
	}
}
