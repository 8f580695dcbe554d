package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func getJSON(t *testing.T, url string, out any) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status for %s: %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func TestTimeEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	var body struct {
		Now string `json:"now"`
	}
	getJSON(t, ts.URL+"/time", &body)

	if _, err := time.Parse(time.RFC3339, body.Now); err != nil {
		t.Fatalf("now should be RFC3339, got %q: %v", body.Now, err)
	}
}

func TestIncrementAndLongPoll(t *testing.T) {
	ts, _ := startTestServer(t)

	type updateResp struct {
		Update int64 `json:"update"`
		Err    error `json:"-"`
	}
	done := make(chan updateResp, 1)
	go func() {
		var body updateResp
		resp, err := http.Get(ts.URL + "/update")
		if err != nil {
			body.Err = err
			done <- body
			return
		}
		defer resp.Body.Close()
		body.Err = json.NewDecoder(resp.Body).Decode(&body)
		done <- body
	}()

	// Give the long-poll a moment to register before triggering the change.
	time.Sleep(100 * time.Millisecond)

	var inc struct {
		Value int64 `json:"value"`
	}
	getJSON(t, ts.URL+"/increment", &inc)
	if inc.Value != 1 {
		t.Fatalf("expected counter 1, got %d", inc.Value)
	}

	select {
	case body := <-done:
		if body.Err != nil {
			t.Fatalf("long-poll request failed: %v", body.Err)
		}
		if body.Update != 1 {
			t.Fatalf("long-poll should report the new value, got %d", body.Update)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("long-poll did not wake after increment")
	}
}
