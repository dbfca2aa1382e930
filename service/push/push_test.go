package push

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"EduProject/service/gateway"
)

type passAuth struct{}

func (passAuth) Verify(credential string) (string, error) { return credential, nil }

func newPushAPI(t *testing.T) (*gateway.Server, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := gateway.NewServer("gw-push-test", passAuth{})
	svc := NewService(srv)

	r := gin.New()
	r.POST("/push/user", svc.HandlePushUser)
	r.POST("/push/room", svc.HandlePushRoom)
	r.GET("/online/:user", svc.HandleOnline)
	r.GET("/online", svc.HandleOnlineList)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestPushUserOfflineReportsZero(t *testing.T) {
	_, ts := newPushAPI(t)
	code, out := postJSON(t, ts.URL+"/push/user", `{"user":"ghost","notification":{"text":"hi"}}`)
	if code != http.StatusOK {
		t.Fatalf("status: %d", code)
	}
	if out["delivered"] != float64(0) || out["online"] != false {
		t.Fatalf("body: %v", out)
	}
}

func TestPushUserRejectsMissingUser(t *testing.T) {
	_, ts := newPushAPI(t)
	code, _ := postJSON(t, ts.URL+"/push/user", `{"notification":{}}`)
	if code != http.StatusBadRequest {
		t.Fatalf("status: %d", code)
	}
}

func TestPushRoomEmptyRoomReportsZero(t *testing.T) {
	_, ts := newPushAPI(t)
	code, out := postJSON(t, ts.URL+"/push/room", `{"room":"math-101","event":"announcement","data":{"text":"exam moved"}}`)
	if code != http.StatusOK {
		t.Fatalf("status: %d", code)
	}
	if out["delivered"] != float64(0) {
		t.Fatalf("body: %v", out)
	}
}

func TestOnlineEndpoints(t *testing.T) {
	_, ts := newPushAPI(t)

	resp, err := http.Get(ts.URL + "/online/alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var single map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&single)
	resp.Body.Close()
	if single["online"] != false {
		t.Fatalf("alice must be offline: %v", single)
	}

	resp, err = http.Get(ts.URL + "/online")
	if err != nil {
		t.Fatalf("get list: %v", err)
	}
	var list map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()
	if list["count"] != float64(0) {
		t.Fatalf("empty gateway must list nobody: %v", list)
	}
}
